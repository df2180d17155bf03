package echoapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "vlogvalidator/apps/api/echo"
	"vlogvalidator/core"
	"vlogvalidator/core/submission"
)

// fakeNoembed serves oEmbed metadata so the pipeline never leaves the
// process.
func fakeNoembed(t *testing.T, title string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"title": title})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func submitBody(t *testing.T, videoURL string) []byte {
	return marshallObj(t, submission.IntakeInput{
		StudentName: "Budi Santoso",
		Class:       "9-A",
		RollNumber:  "05",
		VideoURL:    videoURL,
	})
}

func seedSubmission(t *testing.T, app *testApp, name, class string) submission.Submission {
	t.Helper()
	sub, err := app.subSvc.Create(context.Background(), submission.NewSubmission{
		StudentName: name,
		Class:       class,
		RollNumber:  "01",
		VideoURL:    "https://youtu.be/dQw4w9WgXcQ",
		VideoID:     "dQw4w9WgXcQ",
		VideoTitle:  "Vlog " + name,
		AIFeedback:  core.DefaultEncouragement,
	})
	require.NoError(t, err)
	return sub
}

func Test_submissionApi_create(t *testing.T) {
	noembed := fakeNoembed(t, "Vlog Liburan Seru")
	app := setup(t, noembed.URL)

	req, rec := newRequest(http.MethodPost, "/v1/submissions",
		submitBody(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ"))
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var summary submission.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "Budi Santoso", summary.StudentName)
	assert.Equal(t, "Vlog Liburan Seru", summary.VideoTitle)
	assert.NotEmpty(t, summary.Feedback)

	// the pipeline was reset; a second submission goes straight through
	req, rec = newRequest(http.MethodPost, "/v1/submissions",
		submitBody(t, "https://youtu.be/jNQXAC9IVRw"))
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	subs, err := app.subSvc.QueryAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, subs, 2)
}

func Test_submissionApi_createInvalidURL(t *testing.T) {
	app := setup(t, "")

	tests := []httpTest{
		{
			name:     "not a YouTube link",
			body:     submitBody(t, "https://example.com/video"),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "truncated video id",
			body:     submitBody(t, "https://www.youtube.com/watch?v=short"),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "empty url",
			body:     submitBody(t, ""),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/submissions", tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
			assert.Contains(t, rec.Body.String(), "video_url")
		})
	}
}

func Test_submissionApi_query(t *testing.T) {
	app := setup(t, "")
	token := getToken(t, app)

	budi := seedSubmission(t, app, "Budi Santoso", "9-A")
	siti := seedSubmission(t, app, "Siti Aminah", "9-B")
	seedSubmission(t, app, "Andi Wijaya", "9-A")

	t.Run("requires auth", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/submissions")
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, errMissingToken),
		}, rec)
	})

	t.Run("returns all", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/submissions", token)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var subs []submission.Submission
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &subs))
		assert.Len(t, subs, 3)
	})

	t.Run("search narrows by name", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/submissions?search=siti", token)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var subs []submission.Submission
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &subs))
		require.Len(t, subs, 1)
		assert.Equal(t, siti.ID, subs[0].ID)
	})

	t.Run("class filter and search are conjunctive", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/submissions?search=vlog&class=9-A&sort=name_asc", token)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var subs []submission.Submission
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &subs))
		require.Len(t, subs, 2)
		assert.Equal(t, "Andi Wijaya", subs[0].StudentName)
		assert.Equal(t, budi.ID, subs[1].ID)
	})

	t.Run("empty result is a JSON list", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/submissions?search=nonexistent", token)
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: []byte(`[]`)}, rec)
	})
}

func Test_submissionApi_grade(t *testing.T) {
	app := setup(t, "")
	token := getToken(t, app)
	sub := seedSubmission(t, app, "Budi Santoso", "9-A")

	tests := []httpTest{
		{
			name:     "requires auth",
			path:     "/v1/submissions/" + sub.ID + "/grade",
			body:     marshallObj(t, submission.Grade{Score: 85}),
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, errMissingToken),
		},
		{
			name:     "grades a submission",
			path:     "/v1/submissions/" + sub.ID + "/grade",
			body:     marshallObj(t, submission.Grade{Score: 85, TeacherNote: "Bagus!"}),
			token:    token,
			wantCode: http.StatusOK,
			wantData: marshallObj(t, echoapi.SuccessResponse{Success: "Grade saved."}),
		},
		{
			name:     "score above 100",
			path:     "/v1/submissions/" + sub.ID + "/grade",
			body:     marshallObj(t, submission.Grade{Score: 101}),
			token:    token,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown submission",
			path:     "/v1/submissions/missing/grade",
			body:     marshallObj(t, submission.Grade{Score: 85}),
			token:    token,
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPut, tt.path, tt.token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	subs, err := app.subSvc.QueryAll(context.Background())
	require.NoError(t, err)
	require.True(t, subs[0].Graded())
	assert.Equal(t, 85, *subs[0].Score)
	assert.Equal(t, "Bagus!", subs[0].TeacherNote)
}

func Test_submissionApi_updateStudent(t *testing.T) {
	app := setup(t, "")
	token := getToken(t, app)
	sub := seedSubmission(t, app, "Budi Santoso", "9-A")

	body := marshallObj(t, submission.StudentUpdate{StudentName: "Budi S.", Class: "9-C", RollNumber: "07"})
	req, rec := newAuthRequest(http.MethodPut, "/v1/submissions/"+sub.ID+"/student", token, body)
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	subs, err := app.subSvc.QueryAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Budi S.", subs[0].StudentName)
	assert.Equal(t, "9-C", subs[0].Class)

	// unknown class is rejected
	body = marshallObj(t, submission.StudentUpdate{StudentName: "Budi S.", Class: "10-Z", RollNumber: "07"})
	req, rec = newAuthRequest(http.MethodPut, "/v1/submissions/"+sub.ID+"/student", token, body)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_submissionApi_destroy(t *testing.T) {
	app := setup(t, "")
	token := getToken(t, app)
	sub := seedSubmission(t, app, "Budi Santoso", "9-A")

	req, rec := newAuthRequest(http.MethodDelete, "/v1/submissions/"+sub.ID, token)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req, rec = newAuthRequest(http.MethodDelete, "/v1/submissions/"+sub.ID, token)
	app.server.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marshallObj(t, httpErr{Error: "not found"}),
	}, rec)
}

func Test_submissionApi_destroyAll(t *testing.T) {
	app := setup(t, "")
	token := getToken(t, app)
	seedSubmission(t, app, "Budi Santoso", "9-A")
	seedSubmission(t, app, "Siti Aminah", "9-B")

	req, rec := newAuthRequest(http.MethodDelete, "/v1/submissions", token)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	subs, err := app.subSvc.QueryAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, subs)

	// empty collection is a no-op, not an error
	req, rec = newAuthRequest(http.MethodDelete, "/v1/submissions", token)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func Test_submissionApi_rankings(t *testing.T) {
	app := setup(t, "")
	token := getToken(t, app)

	a := seedSubmission(t, app, "Budi Santoso", "9-A")
	b := seedSubmission(t, app, "Siti Aminah", "9-B")
	seedSubmission(t, app, "Andi Wijaya", "9-A") // ungraded, excluded

	require.NoError(t, app.subSvc.UpdateGrade(context.Background(), a.ID, submission.Grade{Score: 90}))
	require.NoError(t, app.subSvc.UpdateGrade(context.Background(), b.ID, submission.Grade{Score: 70}))

	req, rec := newAuthRequest(http.MethodGet, "/v1/submissions/rankings", token)
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp echoapi.RankingsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Rankings, 2)
	assert.Equal(t, a.ID, resp.Rankings[0].ID)
	assert.Equal(t, submission.Stats{Avg: 80, Max: 90, Min: 70}, resp.Stats)

	// class restriction
	req, rec = newAuthRequest(http.MethodGet, "/v1/submissions/rankings?class=9-B", token)
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Rankings, 1)
	assert.Equal(t, b.ID, resp.Rankings[0].ID)
}

func Test_submissionApi_export(t *testing.T) {
	app := setup(t, "")
	token := getToken(t, app)
	seedSubmission(t, app, "Budi Santoso", "9-A")

	req, rec := newAuthRequest(http.MethodGet, "/v1/submissions/export", token)
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "rekap_tugas_vlog_")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Nama Siswa")
	assert.Contains(t, lines[1], "Budi Santoso")
}

func Test_submissionApi_stream(t *testing.T) {
	app := setup(t, "")
	token := getToken(t, app)
	seedSubmission(t, app, "Budi Santoso", "9-A")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	req, rec := newAuthRequest(http.MethodGet, "/v1/submissions/stream", token)
	req = req.WithContext(ctx)
	app.server.ServeHTTP(rec, req)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "event: snapshot")
	assert.Contains(t, body, "Budi Santoso")
}
