package config

import (
	"testing"

	"github.com/rileyhilliard/ssv/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	valid := func() *Settings {
		s := DefaultSettings()
		s.Home = "/home/alice"
		return s
	}

	tests := []struct {
		name    string
		mutate  func(s *Settings)
		wantErr string
	}{
		{
			name:   "defaults with home",
			mutate: func(s *Settings) {},
		},
		{
			name:   "builtin backend needs no program",
			mutate: func(s *Settings) { s.KeygenBackend = BackendBuiltin; s.KeygenPath = "" },
		},
		{
			name:    "missing home",
			mutate:  func(s *Settings) { s.Home = "" },
			wantErr: "HOME environment variable not set",
		},
		{
			name:    "relative home",
			mutate:  func(s *Settings) { s.Home = "relative/dir" },
			wantErr: "must be absolute",
		},
		{
			name:    "unknown backend",
			mutate:  func(s *Settings) { s.KeygenBackend = "hsm" },
			wantErr: "Unknown keygen backend 'hsm'",
		},
		{
			name:    "exec backend without program",
			mutate:  func(s *Settings) { s.KeygenPath = "" },
			wantErr: "No key generator configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(s)

			err := Validate(s)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	assert.True(t, errors.IsCode(Validate(nil), errors.ErrConfig))
}
