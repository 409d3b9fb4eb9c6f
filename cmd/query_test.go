package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryPath(t *testing.T) {
	tests := []struct {
		args []string
		path string
	}{
		{[]string{"market"}, "/market"},
		{[]string{"rates"}, "/market/rates"},
		{[]string{"balance", "alice"}, "/balances/alice"},
		{[]string{"borrow", "alice"}, "/borrows/alice"},
		{[]string{"allowance", "alice", "bob"}, "/allowances/alice/bob"},
		{[]string{"transfers", "12"}, "/transfers?from=12"},
	}

	for _, test := range tests {
		t.Run(test.args[0], func(t *testing.T) {
			path, err := queryPath(test.args)
			require.NoError(t, err)
			assert.Equal(t, test.path, path)
		})
	}

	_, err := queryPath([]string{"allowance", "alice"})
	assert.Error(t, err)

	_, err = queryPath([]string{"supply"})
	assert.Error(t, err)
}
