package author

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"libraryapi/internal/platform/logging"
	"libraryapi/internal/testutil"
)

func TestHTTPHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo), logging.Discard())

	t.Run("create", func(t *testing.T) {
		mockRepo.EXPECT().Create(gomock.Any(), "Toni Morrison").Return(Author{ID: 4, Name: "Toni Morrison"}, nil)

		w := httptest.NewRecorder()
		handler.Create(w, testutil.NewRequest(http.MethodPost, "/authors", map[string]any{"name": "Toni Morrison"}))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"message":"Author Toni Morrison has been created","id":4}`, w.Body.String())
	})

	t.Run("create without name", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Create(w, testutil.NewRequest(http.MethodPost, "/authors", map[string]any{}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	})

	t.Run("get", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), int64(4)).Return(Author{ID: 4, Name: "Toni Morrison"}, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/authors/4", nil)
		r.SetPathValue("id", "4")
		handler.Get(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":4,"name":"Toni Morrison"}`, w.Body.String())
	})

	t.Run("get missing", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), int64(5)).Return(Author{}, ErrNotFound)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/authors/5", nil)
		r.SetPathValue("id", "5")
		handler.Get(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("list", func(t *testing.T) {
		mockRepo.EXPECT().List(gomock.Any(), 1, 1).Return([]Author{{ID: 2, Name: "B"}}, 2, nil)

		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest(http.MethodGet, "/authors?page=2&per_page=1", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"results":[{"id":2,"name":"B"}],"total":2,"pages":2,"current_page":2}`, w.Body.String())
	})
}
