package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCookieRecord_Applicable(t *testing.T) {
	tests := []struct {
		name   string
		record CookieRecord
		want   bool
	}{
		{"url and name", CookieRecord{URL: "https://x/app", Name: "sid"}, true},
		{"missing name", CookieRecord{URL: "https://x/app", Value: "v"}, false},
		{"missing url", CookieRecord{Name: "sid", Domain: "x"}, false},
		{"empty", CookieRecord{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.record.Applicable())
		})
	}
}

func TestCookieURL(t *testing.T) {
	assert.Equal(t, "https://example.com/app", CookieURL(".example.com", "/app", true))
	assert.Equal(t, "http://example.com/", CookieURL("example.com", "", false))
	assert.Equal(t, "http://example.com/x", CookieURL("example.com", "x", false))
	assert.Equal(t, "", CookieURL("", "/", true))
}

func TestSettings_HasCredentials(t *testing.T) {
	var nilSettings *Settings
	assert.False(t, nilSettings.HasCredentials())
	assert.False(t, (&Settings{Username: "u"}).HasCredentials())
	assert.False(t, (&Settings{Password: "p"}).HasCredentials())
	assert.True(t, (&Settings{Username: "u", Password: "p"}).HasCredentials())
	assert.Equal(t, Credentials{Username: "u", Password: "p"}, (&Settings{Username: "u", Password: "p"}).Credentials())
	assert.NotContains(t, Credentials{Username: "u", Password: "secret"}.String(), "secret")
}
