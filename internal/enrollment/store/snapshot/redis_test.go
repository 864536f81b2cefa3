package snapshot_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"biogate/internal/enrollment/store/snapshot"
)

func TestRedisKey(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{prefix: "biogate", want: "biogate:identity_records"},
		{prefix: "biogate:", want: "biogate:identity_records"},
		{prefix: "", want: "identity_records"},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			assert.Equal(t, tt.want, snapshot.NewRedis(nil, tt.prefix, "identity_records").Key())
		})
	}
}
