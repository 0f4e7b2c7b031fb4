package container

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func TestModule_GraphIsComplete(t *testing.T) {
	err := fx.ValidateApp(
		fx.Supply(ConfigPath("")),
		Module,
	)
	require.NoError(t, err)
}
