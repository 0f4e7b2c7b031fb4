package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/kidneyplan/mealplanner/internal/domain/recipe"
	"github.com/kidneyplan/mealplanner/internal/infrastructure/http/handlers"
	"github.com/kidneyplan/mealplanner/internal/ports/inbound"
	"github.com/kidneyplan/mealplanner/internal/testutil"
	"github.com/kidneyplan/mealplanner/pkg/errors"
)

type HandlersTestSuite struct {
	suite.Suite
	router  *gin.Engine
	plans   *testutil.MockMealPlanService
	recs    *testutil.MockRecommendationService
	catalog *testutil.MockCatalogService
}

func (s *HandlersTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	handlers.RegisterValidation()

	logger := zaptest.NewLogger(s.T())
	s.plans = new(testutil.MockMealPlanService)
	s.recs = new(testutil.MockRecommendationService)
	s.catalog = new(testutil.MockCatalogService)

	mp := handlers.NewMealPlanHandlers(s.plans, logger)
	rh := handlers.NewRecommendationHandlers(s.recs, logger)
	ch := handlers.NewCatalogHandlers(s.catalog, logger)

	r := gin.New()
	r.GET("/", handlers.Root)
	r.POST("/create_meal_plan", mp.CreateMealPlan)
	r.POST("/get_meal_plan", mp.GetMealPlan)
	r.PATCH("/user_already_eat", mp.UserAlreadyEat)
	r.PATCH("/edit_meal_plan", mp.EditMealPlan)
	r.POST("/ai_meal_plan", rh.AIMealPlan)
	r.POST("/update_meal_plan", rh.UpdateMealPlan)
	r.GET("/ingredients", ch.ListIngredients)
	r.POST("/create_ingredient", ch.CreateIngredient)
	r.PATCH("/update_recipe/:r_id", ch.UpdateRecipe)
	r.DELETE("/delete_recipe/:r_id", ch.DeleteRecipe)
	r.NoRoute(handlers.NotFound)
	s.router = r
}

func (s *HandlersTestSuite) TearDownTest() {
	s.plans.AssertExpectations(s.T())
	s.recs.AssertExpectations(s.T())
	s.catalog.AssertExpectations(s.T())
}

func (s *HandlersTestSuite) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlersTestSuite) errorBody(w *httptest.ResponseRecorder) string {
	var body errors.ErrorResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func (s *HandlersTestSuite) statusBody(w *httptest.ResponseRecorder) errors.StatusResponse {
	var body errors.StatusResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func intPtr(v int) *int { return &v }

func (s *HandlersTestSuite) TestRoot() {
	w := s.do(http.MethodGet, "/", "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal("Hello, World!", w.Body.String())
}

func (s *HandlersTestSuite) TestUnknownRoute() {
	w := s.do(http.MethodGet, "/nope", "")
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("Route not found", s.errorBody(w))
}

func (s *HandlersTestSuite) TestCreateMealPlan() {
	s.plans.On("CreatePlan", mock.Anything, mock.MatchedBy(func(cmd inbound.CreatePlanCommand) bool {
		return cmd.UserLineID == "U1" &&
			len(cmd.Days) == 1 && len(cmd.Days[0]) == 2 &&
			*cmd.Days[0][0].RecipeID == 5 && cmd.Days[0][1].RecipeID == nil
	})).Return(&inbound.CreatePlanResult{PlanIDs: []int{1}, StartDate: "2026-10-17"}, nil)

	w := s.do(http.MethodPost, "/create_meal_plan",
		`{"user_line_id":"U1","mealplans":[[{"recipe_id":5},{"recipe_id":null}]]}`)

	s.Equal(http.StatusOK, w.Code)
	s.Equal(errors.StatusResponse{Status: "success", Message: "Meal plan created successfully"}, s.statusBody(w))
}

func (s *HandlersTestSuite) TestCreateMealPlanFailureUsesStatusEnvelope() {
	s.plans.On("CreatePlan", mock.Anything, mock.Anything).
		Return(nil, errors.NewUserNotFoundError("ghost"))

	w := s.do(http.MethodPost, "/create_meal_plan", `{"user_line_id":"ghost","mealplans":[]}`)

	s.Equal(http.StatusInternalServerError, w.Code)
	s.Equal(errors.StatusResponse{Status: "error", Message: "User not found"}, s.statusBody(w))
}

func (s *HandlersTestSuite) TestMalformedBody() {
	w := s.do(http.MethodPost, "/create_meal_plan", `{"user_line_id":`)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Invalid request body", s.errorBody(w))
}

func (s *HandlersTestSuite) TestWrongFieldType() {
	w := s.do(http.MethodPatch, "/user_already_eat", `{"meal_plan_recipe_id":1,"ischecked":"yes"}`)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(s.errorBody(w), "ischecked")
}

func (s *HandlersTestSuite) TestGetMealPlan() {
	date := "2026-10-17"
	list := &inbound.MealPlanList{MealPlans: []inbound.MealPlanDTO{{
		MealPlanID: 3, UserID: 1, Name: "Meal plan for 2026-10-17", Date: date,
		Recipes: []inbound.PlanRecipeDTO{{RecipeID: 5, RecipeName: "Rice", RecipeImgLink: []string{}, MealPlanRecipeID: 9, MealTime: intPtr(1), Calories: 200}},
	}}}
	s.plans.On("GetPlans", mock.Anything, mock.MatchedBy(func(q inbound.GetPlansQuery) bool {
		return q.UserLineID == "U1" && q.Date != nil && *q.Date == date
	})).Return(list, nil)

	w := s.do(http.MethodPost, "/get_meal_plan", `{"user_line_id":"U1","date":"2026-10-17"}`)

	s.Require().Equal(http.StatusOK, w.Code)
	var got inbound.MealPlanList
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &got))
	s.Equal(*list, got)
}

func (s *HandlersTestSuite) TestGetMealPlanUserNotFound() {
	s.plans.On("GetPlans", mock.Anything, mock.Anything).
		Return(nil, errors.NewUserNotFoundError("ghost"))

	w := s.do(http.MethodPost, "/get_meal_plan", `{"user_line_id":"ghost"}`)

	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("User not found", s.errorBody(w))
}

func (s *HandlersTestSuite) TestGetMealPlanMissingLineID() {
	w := s.do(http.MethodPost, "/get_meal_plan", `{}`)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("user_line_id is required", s.errorBody(w))
}

func (s *HandlersTestSuite) TestUserAlreadyEatAcceptsFalse() {
	s.plans.On("ToggleEaten", mock.Anything, inbound.ToggleEatenCommand{MealPlanRecipeID: 7, IsChecked: false}).
		Return(nil)

	w := s.do(http.MethodPatch, "/user_already_eat", `{"meal_plan_recipe_id":7,"ischecked":false}`)

	s.Equal(http.StatusOK, w.Code)
	s.Equal("Meal plan recipe updated successfully", s.statusBody(w).Message)
}

func (s *HandlersTestSuite) TestUserAlreadyEatMissingFlag() {
	w := s.do(http.MethodPatch, "/user_already_eat", `{"meal_plan_recipe_id":7}`)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("ischecked is required", s.errorBody(w))
}

func (s *HandlersTestSuite) TestEditMealPlan() {
	s.plans.On("EditPlan", mock.Anything, mock.MatchedBy(func(cmd inbound.EditPlanCommand) bool {
		return cmd.UserLineID == "U1" && cmd.Date == "2026-10-18" && len(cmd.Recipes) == 2
	})).Return(nil)

	w := s.do(http.MethodPatch, "/edit_meal_plan",
		`{"user_line_id":"U1","date":"2026-10-18","recipes":[{"recipe_id":1},{"recipe_id":2}]}`)

	s.Equal(http.StatusOK, w.Code)
	s.Equal("Meal plan updated successfully", s.statusBody(w).Message)
}

func (s *HandlersTestSuite) TestEditMealPlanErrors() {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"bad date", errors.NewBadRequestError("Invalid date format"), http.StatusBadRequest},
		{"no plan", errors.NewMealPlanNotFoundError("2026-10-18"), http.StatusNotFound},
		{"database", errors.NewDatabaseError("Failed to start transaction", "begin", assert.AnError), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.SetupTest()
			s.plans.On("EditPlan", mock.Anything, mock.Anything).Return(tc.err)

			w := s.do(http.MethodPatch, "/edit_meal_plan", `{"user_line_id":"U1","date":"2026-10-18","recipes":[]}`)

			s.Equal(tc.status, w.Code)
			appErr, _ := errors.As(tc.err)
			s.Equal(appErr.Message, s.errorBody(w))
		})
	}
}

func (s *HandlersTestSuite) TestAIMealPlanPassesReplyThrough() {
	reply := json.RawMessage(`{"mealplans":[[{"recipe_id":1}]],"note":"ok"}`)
	s.recs.On("GenerateInitialPlan", mock.Anything, inbound.GeneratePlanCommand{UserLineID: "U1", Days: 3}).
		Return(reply, nil)

	w := s.do(http.MethodPost, "/ai_meal_plan", `{"data":{"u_id":"U1","days":3}}`)

	s.Equal(http.StatusOK, w.Code)
	s.Equal("application/json", w.Header().Get("Content-Type"))
	s.JSONEq(string(reply), w.Body.String())
}

func (s *HandlersTestSuite) TestAIMealPlanMissingUser() {
	w := s.do(http.MethodPost, "/ai_meal_plan", `{"data":{"days":3}}`)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("u_id is required", s.errorBody(w))
}

func (s *HandlersTestSuite) TestAIMealPlanUpstreamFailure() {
	s.recs.On("GenerateInitialPlan", mock.Anything, mock.Anything).
		Return(nil, errors.NewExternalServiceError("recommender", "Failed to send request", assert.AnError))

	w := s.do(http.MethodPost, "/ai_meal_plan", `{"data":{"u_id":"U1","days":1}}`)

	s.Equal(http.StatusInternalServerError, w.Code)
	s.Equal("Failed to send request", s.errorBody(w))
}

func (s *HandlersTestSuite) TestUpdateMealPlan() {
	s.recs.On("ReconcilePlan", mock.Anything, mock.MatchedBy(func(cmd inbound.ReconcilePlanCommand) bool {
		return cmd.UserLineID == "U1" && cmd.Days == 2 && len(cmd.MealPlans) == 2 && cmd.MealPlans[1][0].RecipeID == nil
	})).Return(json.RawMessage(`{"user_line_id":"U1"}`), nil)

	w := s.do(http.MethodPost, "/update_meal_plan",
		`{"user_id":"U1","days":2,"mealplans":[[{"recipe_id":4}],[{}]]}`)

	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"user_line_id":"U1"}`, w.Body.String())
}

func (s *HandlersTestSuite) TestListIngredients() {
	eng := "garlic"
	s.catalog.On("ListIngredients", mock.Anything).Return([]inbound.IngredientDTO{
		{IngredientID: 1, IngredientName: "กระเทียม", IngredientNameEng: &eng},
	}, nil)

	w := s.do(http.MethodGet, "/ingredients", "")

	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`[{"ingredient_id":1,"ingredient_name":"กระเทียม","ingredient_name_eng":"garlic"}]`, w.Body.String())
}

func (s *HandlersTestSuite) TestCreateIngredient() {
	s.catalog.On("CreateIngredient", mock.Anything, mock.MatchedBy(func(cmd inbound.CreateIngredientCommand) bool {
		return cmd.Name == "ข้าว" && cmd.NameEng == nil
	})).Return(&inbound.IngredientDTO{IngredientID: 2, IngredientName: "ข้าว"}, nil)

	w := s.do(http.MethodPost, "/create_ingredient", `{"ingredient_name":"ข้าว"}`)

	s.Equal(http.StatusOK, w.Code)
	s.Equal(errors.StatusResponse{Status: "success", Message: "Ingredient created successfully"}, s.statusBody(w))
}

func (s *HandlersTestSuite) TestUpdateRecipe() {
	s.catalog.On("UpdateRecipe", mock.Anything, 12, mock.MatchedBy(func(p recipe.Patch) bool {
		return p.Name != nil && *p.Name == "Soup" &&
			p.FoodCategory != nil && assert.ObjectsAreEqual([]string{"soup"}, *p.FoodCategory) &&
			p.Method == nil && p.Calories == nil
	})).Return(nil)

	w := s.do(http.MethodPatch, "/update_recipe/12", `{"recipe_name":"Soup","food_category":["soup",null]}`)

	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`"Recipe updated successfully"`, w.Body.String())
}

func (s *HandlersTestSuite) TestUpdateRecipeErrors() {
	s.Run("bad id", func() {
		w := s.do(http.MethodPatch, "/update_recipe/abc", `{"recipe_name":"Soup"}`)
		s.Equal(http.StatusBadRequest, w.Code)
		s.Equal("Invalid recipe id", s.errorBody(w))
	})

	s.Run("missing recipe", func() {
		s.catalog.On("UpdateRecipe", mock.Anything, 99, mock.Anything).Return(errors.NewRecipeNotFoundError(99)).Once()
		w := s.do(http.MethodPatch, "/update_recipe/99", `{"calories":10}`)
		s.Equal(http.StatusNotFound, w.Code)
		s.Equal("Recipe not found", s.errorBody(w))
	})
}

func (s *HandlersTestSuite) TestDeleteRecipe() {
	s.catalog.On("DeleteRecipe", mock.Anything, 4).Return(nil).Once()
	w := s.do(http.MethodDelete, "/delete_recipe/4", "")
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`"Recipe deleted successfully"`, w.Body.String())
}

func (s *HandlersTestSuite) TestDeleteRecipeInUse() {
	s.catalog.On("DeleteRecipe", mock.Anything, 4).
		Return(errors.NewAppError(errors.CodeConflict, "Recipe is still used by a meal plan", "")).Once()
	w := s.do(http.MethodDelete, "/delete_recipe/4", "")
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("Recipe is still used by a meal plan", s.errorBody(w))
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
