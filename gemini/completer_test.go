package gemini_test

import (
	"context"
	"errors"
	"testing"

	"praxis"
	"praxis/gemini"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestBuildConfig_SetsSystemInstruction(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig("You are a content classifier.")

	require.NotNil(t, config.SystemInstruction)
	require.Len(t, config.SystemInstruction.Parts, 1)
	assert.Contains(t, config.SystemInstruction.Parts[0].Text, "content classifier")
}

func TestBuildConfig_SetsTemperatureAndJSONResponse(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig("instructions")

	require.NotNil(t, config.Temperature)
	assert.Equal(t, float32(0), *config.Temperature)
	assert.Equal(t, "application/json", config.ResponseMIMEType)
}

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"throttling", genai.APIError{Code: 429, Message: "quota"}, praxis.ERATELIMITED},
		{"request timeout", genai.APIError{Code: 408, Message: "slow"}, praxis.ETIMEOUT},
		{"gateway timeout", genai.APIError{Code: 504, Message: "slow"}, praxis.ETIMEOUT},
		{"server error", genai.APIError{Code: 500, Message: "boom"}, praxis.EUNAVAILABLE},
		{"bad request", genai.APIError{Code: 400, Message: "nope"}, praxis.EINVALID},
		{"context deadline", context.DeadlineExceeded, praxis.ETIMEOUT},
		{"transport failure", errors.New("connection reset"), praxis.EUNAVAILABLE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, praxis.ErrorCode(gemini.ClassifyError(tt.err)))
		})
	}
}

func TestNewCompleter_DefaultsModel(t *testing.T) {
	t.Parallel()

	c := gemini.NewCompleter(nil, "")
	require.NotNil(t, c)
}
