package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	handler(c)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	return body
}

func TestRespondErrorEnvelope(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		respondError(c, http.StatusBadRequest, "GET /test", "bad input")
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	body := decodeEnvelope(t, w)
	if body["success"] != false {
		t.Fatalf("expected success=false, got %v", body["success"])
	}
	if body["message"] != "bad input" {
		t.Fatalf("expected message, got %v", body["message"])
	}
	if _, ok := body["data"]; ok {
		t.Fatal("failure envelope must not carry data")
	}
}

func TestRespondDataEnvelope(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		respondData(c, http.StatusCreated, gin.H{"name": "shirt"})
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	body := decodeEnvelope(t, w)
	if body["success"] != true {
		t.Fatalf("expected success=true, got %v", body["success"])
	}
	if body["data"] == nil {
		t.Fatal("expected data in success envelope")
	}
}

func TestRespondListEnvelopeIncludesCount(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		respondList(c, 2, []string{"a", "b"})
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeEnvelope(t, w)
	if body["success"] != true {
		t.Fatalf("expected success=true, got %v", body["success"])
	}
	if body["count"] != float64(2) {
		t.Fatalf("expected count 2, got %v", body["count"])
	}
}

func TestRespondMessageEnvelope(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		respondMessage(c, http.StatusOK, "deleted")
	})

	body := decodeEnvelope(t, w)
	if body["success"] != true || body["message"] != "deleted" {
		t.Fatalf("unexpected envelope: %v", body)
	}
}

func TestHandlePanicWritesFailureEnvelope(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		defer handlePanic(c, "GET /test")
		panic("boom")
	})

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	body := decodeEnvelope(t, w)
	if body["success"] != false {
		t.Fatalf("expected success=false, got %v", body["success"])
	}
}

func TestPrincipalFromContext(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	if _, ok := principalFromContext(c); ok {
		t.Fatal("expected no principal without auth context")
	}

	id := primitive.NewObjectID()
	c.Set("userId", id)
	p, ok := principalFromContext(c)
	if !ok {
		t.Fatal("expected principal with userId set")
	}
	if p.ID != id {
		t.Fatalf("wrong principal id: %v", p.ID)
	}
	if p.Role != "user" || p.isAdmin() {
		t.Fatalf("expected default user role, got %q", p.Role)
	}

	c.Set("role", "admin")
	p, _ = principalFromContext(c)
	if !p.isAdmin() {
		t.Fatal("expected admin role to be honored")
	}
}

func TestPrincipalOwns(t *testing.T) {
	id := primitive.NewObjectID()
	p := principal{ID: id, Role: "user"}

	if !p.owns(id) {
		t.Fatal("principal must own its own resources")
	}
	if p.owns(primitive.NewObjectID()) {
		t.Fatal("principal must not own another user's resources")
	}
}
