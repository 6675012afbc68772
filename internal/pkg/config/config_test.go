package config

import (
	"github.com/ougirez/pricelist/internal/pkg/constants"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "dsn missing",
			env:     map[string]string{"PRICELIST_AUTH_SECRET": "s3cret"},
			wantErr: "postgres.dsn is required",
		},
		{
			name:    "secret missing in production",
			env:     map[string]string{"PRICELIST_POSTGRES_DSN": "postgres://localhost/prices"},
			wantErr: "auth.secret is required",
		},
		{
			name: "secret missing in development",
			env: map[string]string{
				"PRICELIST_POSTGRES_DSN":    "postgres://localhost/prices",
				"PRICELIST_LOG_DEVELOPMENT": "true",
			},
		},
		{
			name: "secret set",
			env: map[string]string{
				"PRICELIST_POSTGRES_DSN": "postgres://localhost/prices",
				"PRICELIST_AUTH_SECRET":  "s3cret",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)
			t.Setenv("PRICELIST_POSTGRES_DSN", "")
			t.Setenv("PRICELIST_AUTH_SECRET", "")
			t.Setenv("PRICELIST_LOG_DEVELOPMENT", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			err := Load("")
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 5000, viper.GetInt(constants.ViperUploadChunkSize))
		})
	}
}
