package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"pereval/internal/database"
	"pereval/internal/dto"

	"github.com/gin-gonic/gin"
)

// setupRouter поднимает роутер с боевым набором маршрутов поверх
// отдельной базы данных во временной директории теста.
func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := filepath.Join(t.TempDir(), "pereval_test.db")
	if err := database.InitDB(dbPath); err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() { database.DB.Close() })

	router := gin.New()
	RegisterRoutes(router)
	return router
}

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func submitBody(title, email string) *dto.SubmitDataRequest {
	return &dto.SubmitDataRequest{
		BeautyTitle: "пер. ",
		Title:       title,
		User: dto.UserDTO{
			Email: email,
			Phone: "+7 555 55 55",
			Fam:   "Пупкин",
			Name:  "Василий",
			Otc:   "Иванович",
		},
		Coords: dto.CoordsDTO{
			Latitude:  f64(45.3842),
			Longitude: f64(7.1525),
			Height:    i64(1200),
		},
		Level: &dto.LevelDTO{Winter: "1B", Summer: "1A"},
		Images: []dto.ImageDTO{
			{Title: "Седловина", URL: "https://example.com/sedlo.jpg"},
		},
	}
}

// doJSON выполняет запрос к роутеру; body сериализуется в JSON, если не nil.
func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func TestSubmitAndGetPass(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/submitData", submitBody("Дятлова", "qwerty@mail.ru"))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	created := decode[dto.SubmitDataResponse](t, w)
	if created.ID <= 0 {
		t.Fatalf("expected positive id, got %d", created.ID)
	}
	if created.Status != "new" {
		t.Fatalf("expected status new, got %s", created.Status)
	}

	w = doJSON(t, router, http.MethodGet, "/submitData/"+strconv.FormatInt(created.ID, 10), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	pass := decode[dto.PassResponse](t, w)
	if pass.Title != "Дятлова" || pass.User.Email != "qwerty@mail.ru" {
		t.Fatalf("unexpected pass: %+v", pass)
	}
	if pass.Level["winter"] != "1B" || pass.Level["summer"] != "1A" {
		t.Fatalf("unexpected levels: %+v", pass.Level)
	}
	if len(pass.Images) != 1 || pass.Images[0].URL != "https://example.com/sedlo.jpg" {
		t.Fatalf("unexpected images: %+v", pass.Images)
	}
}

func TestSubmitValidation(t *testing.T) {
	router := setupRouter(t)

	cases := []struct {
		name   string
		mutate func(r *dto.SubmitDataRequest)
	}{
		{"без названия", func(r *dto.SubmitDataRequest) { r.Title = "" }},
		{"широта вне диапазона", func(r *dto.SubmitDataRequest) { r.Coords.Latitude = f64(95) }},
		{"долгота вне диапазона", func(r *dto.SubmitDataRequest) { r.Coords.Longitude = f64(-200) }},
		{"высота вне диапазона", func(r *dto.SubmitDataRequest) { r.Coords.Height = i64(12000) }},
		{"без высоты", func(r *dto.SubmitDataRequest) { r.Coords.Height = nil }},
		{"некорректный email", func(r *dto.SubmitDataRequest) { r.User.Email = "не-адрес" }},
		{"короткий телефон", func(r *dto.SubmitDataRequest) { r.User.Phone = "123" }},
		{"неизвестная категория", func(r *dto.SubmitDataRequest) { r.Level = &dto.LevelDTO{Summer: "4A"} }},
		{"слишком много фотографий", func(r *dto.SubmitDataRequest) {
			r.Images = nil
			for i := 0; i < 11; i++ {
				r.Images = append(r.Images, dto.ImageDTO{Title: "Фото", URL: "https://example.com/i.jpg"})
			}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := submitBody("Дятлова", "qwerty@mail.ru")
			tc.mutate(body)
			w := doJSON(t, router, http.MethodPost, "/submitData", body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestGetPassNotFound(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/submitData/9999", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetPassBadID(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/submitData/abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdatePassFlow(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/submitData", submitBody("Дятлова", "qwerty@mail.ru"))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	created := decode[dto.SubmitDataResponse](t, w)
	path := "/submitData/" + strconv.FormatInt(created.ID, 10)

	// Пока статус 'new', редактирование разрешено.
	upd := submitBody("Дятлова (уточнено)", "qwerty@mail.ru")
	w = doJSON(t, router, http.MethodPatch, path, upd)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	result := decode[dto.UpdateResult](t, w)
	if result.State != 1 {
		t.Fatalf("expected state 1, got %d (%s)", result.State, result.Message)
	}

	// После ухода записи с модерации редактирование запрещено.
	if _, err := database.GetDB().Exec("UPDATE mountain_passes SET status = 'accepted' WHERE id = ?", created.ID); err != nil {
		t.Fatalf("set status: %v", err)
	}
	w = doJSON(t, router, http.MethodPatch, path, upd)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	result = decode[dto.UpdateResult](t, w)
	if result.State != 0 {
		t.Fatalf("expected state 0 after moderation, got %d", result.State)
	}
}

func TestListPassesByEmail(t *testing.T) {
	router := setupRouter(t)

	if w := doJSON(t, router, http.MethodPost, "/submitData", submitBody("Первый", "qwerty@mail.ru")); w.Code != http.StatusCreated {
		t.Fatalf("create first: %d", w.Code)
	}
	time.Sleep(5 * time.Millisecond)
	if w := doJSON(t, router, http.MethodPost, "/submitData", submitBody("Второй", "qwerty@mail.ru")); w.Code != http.StatusCreated {
		t.Fatalf("create second: %d", w.Code)
	}

	w := doJSON(t, router, http.MethodGet, "/submitData?user__email=qwerty@mail.ru", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	passes := decode[[]dto.PassResponse](t, w)
	if len(passes) != 2 {
		t.Fatalf("expected 2 passes, got %d", len(passes))
	}
	if passes[0].Title != "Второй" {
		t.Fatalf("expected newest-first order, got %s first", passes[0].Title)
	}

	// Без параметра user__email список не отдается.
	w = doJSON(t, router, http.MethodGet, "/submitData", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without user__email, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}
