package handlers

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"greenia/internal/detection"
	"greenia/internal/models"
)

type stubDetector struct {
	res *detection.Result
	err error
}

func (s *stubDetector) Detect(context.Context, []byte) (*detection.Result, error) {
	return s.res, s.err
}

type countingDetector struct{ calls int }

func (c *countingDetector) Detect(context.Context, []byte) (*detection.Result, error) {
	c.calls++
	return &detection.Result{}, nil
}

type recordingImages struct {
	mu           sync.Mutex
	keys         []string
	contentTypes []string
}

func (r *recordingImages) Put(_ context.Context, key, contentType string, _ []byte) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, key)
	r.contentTypes = append(r.contentTypes, contentType)
	return "s3://greenia-test/" + key, nil
}

var pngHeader = []byte("\x89PNG\r\n\x1a\nfake-image-body")

func realPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{B: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png: %v", err)
	}
	return buf.Bytes()
}

func multipartImage(t *testing.T, field string, data []byte) *http.Request {
	return multipartImageAs(t, field, "application/octet-stream", data)
}

// multipartImageAs builds an upload whose file part declares partType.
func multipartImageAs(t *testing.T, field, partType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="photo.png"`)
	hdr.Set("Content-Type", partType)
	fw, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recognitions", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func expectActiveUser(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).WithArgs("u1").
		WillReturnRows(userRow("u1", "a1", "luis@example.com", "x", true))
}

func TestRecognitionCreatePersistsBatch(t *testing.T) {
	db, mock := newMock(t)
	det := &stubDetector{res: &detection.Result{Predictions: []detection.Prediction{
		{Class: "PET plastic", Confidence: 0.9},
		{Class: "PET plastic", Confidence: 0.8},
		{Class: "HDPE plastic", Confidence: 0.7},
	}}}
	h := NewRecognitionHandler(db, testConfig(), det, nil)
	typeCols := []string{"id", "code", "name", "co2_per_unit_kg"}
	now := time.Now().UTC()

	expectActiveUser(mock)
	mock.ExpectQuery(`FROM plastic_types WHERE code = \$1`).WithArgs("HDPE").
		WillReturnRows(sqlmock.NewRows(typeCols).AddRow(2, "HDPE", "Polietileno de alta densidad", 0.5))
	mock.ExpectQuery(`FROM plastic_types WHERE code = \$1`).WithArgs("PET").
		WillReturnRows(sqlmock.NewRows(typeCols).AddRow(1, "PET", "Tereftalato de polietileno", 0.5))
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO recognitions").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 2, 1, 0.02, 0.5, nil, "u1", "a1").
		WillReturnRows(sqlmock.NewRows([]string{"recognized_at"}).AddRow(now))
	mock.ExpectQuery("INSERT INTO recognitions").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 1, 2, 0.04, 1.0, nil, "u1", "a1").
		WillReturnRows(sqlmock.NewRows([]string{"recognized_at"}).AddRow(now))
	mock.ExpectCommit()

	w := httptest.NewRecorder()
	h.Create(w, withSession(multipartImage(t, "image", pngHeader), "u1", models.RoleUser, "a1"))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d (%s)", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	if resp["saved"] != true || resp["total_co2_saved_kg"] != 1.5 {
		t.Fatalf("unexpected outcome %v", resp)
	}
	expectationsMet(t, mock)
}

func TestRecognitionCreateRollsBackOnInsertFailure(t *testing.T) {
	db, mock := newMock(t)
	det := &stubDetector{res: &detection.Result{Predictions: []detection.Prediction{{Class: "PET plastic"}}}}
	h := NewRecognitionHandler(db, testConfig(), det, nil)

	expectActiveUser(mock)
	mock.ExpectQuery(`FROM plastic_types WHERE code = \$1`).WithArgs("PET").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "co2_per_unit_kg"}).AddRow(1, "PET", "PET", 0.5))
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO recognitions").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	w := httptest.NewRecorder()
	h.Create(w, withSession(multipartImage(t, "image", pngHeader), "u1", models.RoleUser, "a1"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d (%s)", w.Code, w.Body.String())
	}
	if decodeBody(t, w)["error"] != "not_persisted" {
		t.Fatalf("expected not_persisted")
	}
	expectationsMet(t, mock)
}

func TestRecognitionCreateDetectionFailure(t *testing.T) {
	db, mock := newMock(t)
	det := &stubDetector{err: &detection.RemoteError{StatusCode: http.StatusInternalServerError, Body: "oops"}}
	images := &recordingImages{}
	h := NewRecognitionHandler(db, testConfig(), det, images)

	expectActiveUser(mock)

	w := httptest.NewRecorder()
	h.Create(w, withSession(multipartImageAs(t, "image", "text/html", []byte("<script>alert(1)</script>")), "u1", models.RoleUser, "a1"))

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 got %d (%s)", w.Code, w.Body.String())
	}
	if len(images.keys) != 0 {
		t.Fatalf("failed recognition must not be archived, got %v", images.keys)
	}
	expectationsMet(t, mock)
}

func TestRecognitionCreateArchivesJPEGAfterCommit(t *testing.T) {
	db, mock := newMock(t)
	det := &stubDetector{res: &detection.Result{Predictions: []detection.Prediction{{Class: "PET plastic"}}}}
	images := &recordingImages{}
	h := NewRecognitionHandler(db, testConfig(), det, images)

	expectActiveUser(mock)
	mock.ExpectQuery(`FROM plastic_types WHERE code = \$1`).WithArgs("PET").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "co2_per_unit_kg"}).AddRow(1, "PET", "PET", 0.5))
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO recognitions").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 1, 1, 0.02, 0.5, nil, "u1", "a1").
		WillReturnRows(sqlmock.NewRows([]string{"recognized_at"}).AddRow(time.Now().UTC()))
	mock.ExpectCommit()
	mock.ExpectExec(`UPDATE recognitions SET image_key = \$2 WHERE batch_id = \$1`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := httptest.NewRecorder()
	h.Create(w, withSession(multipartImageAs(t, "image", "text/html", realPNG(t)), "u1", models.RoleUser, "a1"))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d (%s)", w.Code, w.Body.String())
	}
	if len(images.contentTypes) != 1 || images.contentTypes[0] != "image/jpeg" {
		t.Fatalf("expected one image/jpeg upload, got %v", images.contentTypes)
	}
	key, _ := decodeBody(t, w)["image_key"].(string)
	if key != "s3://greenia-test/"+images.keys[0] {
		t.Fatalf("unexpected image_key %q", key)
	}
	expectationsMet(t, mock)
}

func TestRecognitionCreateStoreFailureArchivesNothing(t *testing.T) {
	db, mock := newMock(t)
	det := &stubDetector{res: &detection.Result{Predictions: []detection.Prediction{{Class: "PET plastic"}}}}
	images := &recordingImages{}
	h := NewRecognitionHandler(db, testConfig(), det, images)

	expectActiveUser(mock)
	mock.ExpectQuery(`FROM plastic_types WHERE code = \$1`).WithArgs("PET").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "co2_per_unit_kg"}).AddRow(1, "PET", "PET", 0.5))
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO recognitions").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	w := httptest.NewRecorder()
	h.Create(w, withSession(multipartImage(t, "image", realPNG(t)), "u1", models.RoleUser, "a1"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d (%s)", w.Code, w.Body.String())
	}
	if len(images.keys) != 0 {
		t.Fatalf("unsaved recognition must not be archived, got %v", images.keys)
	}
	expectationsMet(t, mock)
}

func TestRecognitionCreateRejectsInactiveUser(t *testing.T) {
	db, mock := newMock(t)
	det := &countingDetector{}
	h := NewRecognitionHandler(db, testConfig(), det, nil)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).WithArgs("u1").
		WillReturnRows(userRow("u1", "a1", "luis@example.com", "x", false))

	w := httptest.NewRecorder()
	h.Create(w, withSession(multipartImage(t, "image", pngHeader), "u1", models.RoleUser, "a1"))

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d (%s)", w.Code, w.Body.String())
	}
	if decodeBody(t, w)["error"] != "account_inactive" {
		t.Fatalf("expected account_inactive")
	}
	if det.calls != 0 {
		t.Fatalf("detector called %d times for an inactive account", det.calls)
	}
	expectationsMet(t, mock)
}

func TestRecognitionCreateRejectsOversizedImage(t *testing.T) {
	db, mock := newMock(t)
	cfg := testConfig()
	cfg.MaxUploadBytes = 1024
	h := NewRecognitionHandler(db, cfg, &stubDetector{}, nil)

	w := httptest.NewRecorder()
	h.Create(w, withSession(multipartImage(t, "image", bytes.Repeat([]byte{0xff}, 4096)), "u1", models.RoleUser, "a1"))

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 got %d (%s)", w.Code, w.Body.String())
	}
	expectationsMet(t, mock)
}

func TestRecognitionCreateRequiresImage(t *testing.T) {
	db, mock := newMock(t)
	h := NewRecognitionHandler(db, testConfig(), &stubDetector{}, nil)

	w := httptest.NewRecorder()
	h.Create(w, withSession(multipartImage(t, "photo", pngHeader), "u1", models.RoleUser, "a1"))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d (%s)", w.Code, w.Body.String())
	}
	expectationsMet(t, mock)
}

func TestRecognitionList(t *testing.T) {
	db, mock := newMock(t)
	h := NewRecognitionHandler(db, testConfig(), &stubDetector{}, nil)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM recognitions r\s+JOIN plastic_types p`).WithArgs("u1", 10, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "batch_id", "plastic_type_id", "code", "name", "quantity", "weight", "co2",
			"image_key", "user_id", "admin_id", "recognized_at"}).
			AddRow("r1", "b1", 1, "PET", "PET", 2, 0.04, 1.0, nil, "u1", "a1", now))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM recognitions WHERE user_id = \$1`).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/v1/recognitions?page=2&page_size=10", nil), "u1", models.RoleUser, "a1")
	w := httptest.NewRecorder()
	h.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	if resp["total"] != float64(11) || resp["total_pages"] != float64(2) || resp["page"] != float64(2) {
		t.Fatalf("unexpected page %v", resp)
	}
	expectationsMet(t, mock)
}
