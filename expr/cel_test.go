package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCEL(t *testing.T) {
	r := newResolver(t)

	tests := []struct {
		name    string
		node    *Node
		want    any
		wantErr error
	}{
		{
			name: "struct variable",
			node: CEL("p.X + p.Y", map[string]any{"p": Point{X: 3, Y: 4}}),
			want: int64(7),
		},
		{
			name: "node variable with property",
			node: CEL("a.Owner + ':' + string(a.Balance)", map[string]any{"a": Const(newAccount())}),
			want: "ann:10",
		},
		{
			name: "list result",
			node: CEL("[1, 2].map(x, x * 2)", nil),
			want: []any{int64(2), int64(4)},
		},
		{
			name: "map result",
			node: CEL("{'a': 1}", nil),
			want: map[string]any{"a": int64(1)},
		},
		{
			name: "null result",
			node: CEL("null", nil),
			want: nil,
		},
		{
			name:    "syntax error",
			node:    CEL("p.", map[string]any{"p": 1}),
			wantErr: ErrUnsupportedExpressionShape,
		},
		{
			name:    "evaluation error",
			node:    CEL("1 / z", map[string]any{"z": 0}),
			wantErr: ErrInvocationFailed,
		},
		{
			name:    "variable resolution error",
			node:    CEL("v", map[string]any{"v": Member(Const(nil), "X")}),
			wantErr: ErrMissingArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.node)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, plain(got))
		})
	}
}

func TestCEL_CompiledOnce(t *testing.T) {
	r := newResolver(t)
	acct := newAccount()
	n := Invoke(CEL("a.Balance * 2", map[string]any{"a": Const(acct)}))

	got, err := r.Resolve(n)
	require.NoError(t, err)
	assert.Equal(t, int64(20), got.Interface())

	acct.balance = 21

	got, err = r.Resolve(n)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.Interface())
}
