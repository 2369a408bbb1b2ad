package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestClassifyCommand(t *testing.T) {
	out, _, err := execute(t, "classify", "--code", "needs_more_info")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "revision", got["kind"])
	assert.Equal(t, false, got["approved"])
	assert.Equal(t, "3", got["canonical_code"])
}

func TestLookupsCommandSortsByID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/categories", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer cli-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"category_id": 2, "category_name": "ทุนอุดหนุนกิจกรรม"}, {"category_id": 1, "category_name": "ทุนส่งเสริมการวิจัย"}]`))
	})
	mux.HandleFunc("/api/v1/subcategories", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	out, _, err := execute(t, "lookups", "--backend", srv.URL, "--token", "cli-token")
	require.NoError(t, err)
	assert.Equal(t, "categories:\n     1  ทุนส่งเสริมการวิจัย\n     2  ทุนอุดหนุนกิจกรรม\nsubcategories:\n", out)
}

func TestViewRejectsBadID(t *testing.T) {
	_, _, err := execute(t, "view", "abc")
	assert.Error(t, err)
}
