package config

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		cfg     any
		wantErr string
	}{
		{name: "valid", cfg: &sampleConfig{Name: "x", Store: storeSection{Driver: "sqlite"}}},
		{name: "nil", cfg: nil, wantErr: "config cannot be nil"},
		{name: "missing name", cfg: &sampleConfig{Store: storeSection{Driver: "memory"}}, wantErr: "'sampleConfig.Name' is required"},
		{name: "bad driver", cfg: &sampleConfig{Name: "x", Store: storeSection{Driver: "mysql"}}, wantErr: "must be one of [memory sqlite postgres]"},
		{name: "retry too high", cfg: &sampleConfig{Name: "x", Store: storeSection{Driver: "memory", Retry: 11}}, wantErr: "must be at most 10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidatorCustomRule(t *testing.T) {
	v := NewValidator()
	require.NoError(t, v.RegisterRule("even", func(fl validator.FieldLevel) bool {
		return fl.Field().Int()%2 == 0
	}))

	type cfg struct {
		Workers int `validate:"even"`
	}
	assert.NoError(t, v.Validate(&cfg{Workers: 4}))
	assert.ErrorIs(t, v.Validate(&cfg{Workers: 3}), ErrValidationFailed)
}
