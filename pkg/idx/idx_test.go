package idx_test

import (
	"testing"
	"time"

	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNewAndParse(t *testing.T) {
	id := idx.New()
	require.NotEmpty(t, id.String())
	require.False(t, id.IsZero())

	parsed, err := idx.Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "   ", "not-a-ulid", "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3Z"} {
		_, err := idx.Parse(s)
		require.ErrorIs(t, err, idx.ErrInvalid, "input %q", s)
	}
}

func TestOrdering(t *testing.T) {
	a := idx.NewAt(time.Unix(1, 0).UTC())
	b := idx.NewAt(time.Unix(2, 0).UTC())

	// ULIDs sort by their timestamp component first.
	require.Less(t, a.String(), b.String())
}

func TestTimeExtraction(t *testing.T) {
	tm := time.Unix(1700000000, 0).UTC()
	id := idx.NewAt(tm)
	require.WithinDuration(t, tm, id.Time(), time.Millisecond)
}

func TestMustParse(t *testing.T) {
	id := idx.MustParse("01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV")
	require.False(t, id.IsZero())
}
