package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"nutribalance/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func edamamServer(t *testing.T, fail bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
			return
		}
		assert.Equal(t, "id", r.URL.Query().Get("app_id"))
		assert.Equal(t, "key", r.URL.Query().Get("app_key"))
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/api/food-database/v2/parser":
			assert.Equal(t, "apple", r.URL.Query().Get("ingr"))
			_, _ = w.Write([]byte(`{"hints":[{"food":{"foodId":"food_apple","label":"Apple",
				"nutrients":{"ENERC_KCAL":52,"PROCNT":0.3,"CHOCDF":13.8,"FAT":0.2,"FIBTG":2.4}}}]}`))
		case "/api/food-database/v2/nutrients":
			assert.Equal(t, http.MethodPost, r.Method)
			var body struct {
				Ingredients []struct {
					Quantity   float64 `json:"quantity"`
					MeasureURI string  `json:"measureURI"`
					FoodID     string  `json:"foodId"`
				} `json:"ingredients"`
			}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if assert.Len(t, body.Ingredients, 1) {
				assert.Equal(t, 100.0, body.Ingredients[0].Quantity)
				assert.Equal(t, gramMeasureURI, body.Ingredients[0].MeasureURI)
				assert.Equal(t, "food_apple", body.Ingredients[0].FoodID)
			}
			_, _ = w.Write([]byte(`{"totalNutrients":{"ENERC_KCAL":{"quantity":52},"VITC":{"quantity":4.6},"K":{"quantity":107}}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFoodSearchUsesEdamam(t *testing.T) {
	srv := edamamServer(t, false)
	svc := NewFoodService(NewEdamamService(srv.URL, "id", "key"), nil)

	foods, err := svc.Search(context.Background(), "apple")
	require.NoError(t, err)
	require.Len(t, foods, 1)
	assert.Equal(t, models.Food{ID: "food_apple", Name: "Apple", Calories: 52, Protein: 0.3, Carbs: 13.8, Fat: 0.2, Fiber: 2.4}, foods[0])

	food, err := svc.Nutrition(context.Background(), "food_apple")
	require.NoError(t, err)
	assert.Equal(t, 52.0, food.Calories)
	assert.Equal(t, 4.6, food.Vitamins["C"])
	assert.Equal(t, 107.0, food.Minerals["potassium"])
	assert.Equal(t, 0.0, food.Minerals["iron"])
	assert.Len(t, food.Vitamins, 11)
	assert.Len(t, food.Minerals, 8)
}

func TestFoodFallsBackToMock(t *testing.T) {
	failing := edamamServer(t, true)
	for name, eda := range map[string]*EdamamService{
		"unconfigured": NewEdamamService("", "", ""),
		"failing":      NewEdamamService(failing.URL, "id", "key"),
	} {
		t.Run(name, func(t *testing.T) {
			svc := NewFoodService(eda, nil)

			foods, err := svc.Search(context.Background(), "RICE")
			require.NoError(t, err)
			require.Len(t, foods, 1)
			assert.Equal(t, "brown_rice", foods[0].ID)

			none, err := svc.Search(context.Background(), "pizza")
			require.NoError(t, err)
			assert.Empty(t, none)

			food, err := svc.Nutrition(context.Background(), "broccoli")
			require.NoError(t, err)
			assert.Equal(t, 135.0, food.Vitamins["C"])

			_, err = svc.Nutrition(context.Background(), "food_unknown")
			assert.ErrorIs(t, err, models.ErrNotFound)
		})
	}
}

func TestFoodSearchRequiresQuery(t *testing.T) {
	svc := NewFoodService(NewEdamamService("", "", ""), nil)
	_, err := svc.Search(context.Background(), "  ")
	assert.ErrorIs(t, err, models.ErrValidation)
}

type fakeDetector struct {
	labels []string
	err    error
	in     *rekognition.DetectLabelsInput
}

func (f *fakeDetector) DetectLabels(_ context.Context, in *rekognition.DetectLabelsInput, _ ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	out := &rekognition.DetectLabelsOutput{}
	for _, l := range f.labels {
		out.Labels = append(out.Labels, types.Label{Name: aws.String(l)})
	}
	return out, nil
}

func TestFoodRecognize(t *testing.T) {
	img := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("jpeg"))
	det := &fakeDetector{labels: []string{"Plate", "Broccoli", "Rice"}}
	svc := NewFoodService(NewEdamamService("", "", ""), NewRekognitionService(det))

	res, err := svc.Recognize(context.Background(), img)
	require.NoError(t, err)
	assert.Equal(t, []string{"Plate", "Broccoli", "Rice"}, res.Labels)
	assert.Equal(t, "Broccoli", res.Label)
	require.Len(t, res.Foods, 1)
	assert.Equal(t, "broccoli", res.Foods[0].ID)
	assert.Equal(t, []byte("jpeg"), det.in.Image.Bytes)
	assert.Equal(t, int32(5), aws.ToInt32(det.in.MaxLabels))

	_, err = svc.Recognize(context.Background(), "not-an-image")
	assert.ErrorIs(t, err, models.ErrValidation)

	det.err = errors.New("throttled")
	_, err = svc.Recognize(context.Background(), img)
	assert.ErrorIs(t, err, models.ErrUpstream)

	_, err = NewFoodService(NewEdamamService("", "", ""), nil).Recognize(context.Background(), img)
	assert.ErrorIs(t, err, models.ErrUnavailable)
}

func TestCalculateSumsMaps(t *testing.T) {
	total := Calculate([]models.Food{
		mockFoods["chicken_breast"],
		mockFoods["brown_rice"],
		{Calories: 10, Vitamins: map[string]float64{"B6": 0.2}},
	})
	assert.Equal(t, 391.0, total.Calories)
	assert.Equal(t, 36.0, total.Protein)
	assert.InDelta(t, 1.0, total.Vitamins["B6"], 1e-9)
	assert.Equal(t, 86.0, total.Minerals["magnesium"])
	assert.Equal(t, 27.6, total.Minerals["selenium"])

	empty := Calculate(nil)
	assert.NotNil(t, empty.Vitamins)
	assert.Zero(t, empty.Calories)
}
