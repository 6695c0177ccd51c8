package route

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestIsSubmission(t *testing.T) {
	for _, m := range []string{"", http.MethodGet, http.MethodHead} {
		assert.False(t, (&Request{Method: m}).IsSubmission(), m)
	}
	for _, m := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		assert.True(t, (&Request{Method: m}).IsSubmission(), m)
	}
}

func TestRequestURL(t *testing.T) {
	r := &Request{Path: "/nested", Search: "index"}
	assert.Equal(t, "/nested?index", r.URL())
	assert.True(t, r.Query().Has("index"))

	r = &Request{Path: "/flat"}
	assert.Equal(t, "/flat", r.URL())
}
