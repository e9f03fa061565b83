package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value form",
			args:    []string{"-a", ":8080", "-d", "dsn", "-x", "noise"},
			allowed: []string{"-a", "-d"},
			want:    []string{"-a", ":8080", "-d", "dsn"},
		},
		{
			name:    "equals form",
			args:    []string{"--config=conf.json", "-a=:9090", "-b=skip"},
			allowed: []string{"--config", "-a"},
			want:    []string{"--config=conf.json", "-a=:9090"},
		},
		{
			name:    "flag without value followed by another flag",
			args:    []string{"-a", "-d", "dsn"},
			allowed: []string{"-a"},
			want:    []string{"-a"},
		},
		{
			name:    "nothing allowed",
			args:    []string{"-a", "1", "-b", "2"},
			allowed: []string{},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}
