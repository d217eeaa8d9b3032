package resource

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testSortFields = []string{"name", "description", "created.at_time"}

func TestBuildListQuery_Defaults(t *testing.T) {
	q, err := BuildListQuery(ListParams{}, testSortFields)
	require.NoError(t, err)
	require.Equal(t, DefaultLimit, q.Limit)
	require.Equal(t, "name", q.SortBy)
	require.False(t, q.Descending)
	require.Empty(t, q.AfterID)
}

func TestBuildListQuery_LimitClamping(t *testing.T) {
	cases := map[string]int{
		"0":    1,
		"-5":   1,
		"1":    1,
		"50":   50,
		"100":  100,
		"101":  100,
		"9999": 100,
	}
	for in, want := range cases {
		q, err := BuildListQuery(ListParams{Limit: in}, testSortFields)
		require.NoError(t, err, "limit=%s", in)
		require.Equal(t, want, q.Limit, "limit=%s", in)
	}
}

func TestBuildListQuery_NonNumericLimit(t *testing.T) {
	_, err := BuildListQuery(ListParams{Limit: "ten"}, testSortFields)
	require.Error(t, err)
	require.Equal(t, KindValidation, KindOf(err))
}

func TestBuildListQuery_SortFieldAllowList(t *testing.T) {
	q, err := BuildListQuery(ListParams{SortBy: "created.at_time"}, testSortFields)
	require.NoError(t, err)
	require.Equal(t, "created.at_time", q.SortBy)

	_, err = BuildListQuery(ListParams{SortBy: "password"}, testSortFields)
	require.Error(t, err)
	require.Equal(t, KindValidation, KindOf(err))
	require.Contains(t, err.Error(), "password")
}

func TestBuildListQuery_Order(t *testing.T) {
	for _, in := range []string{"asc", "ASC", "Asc", ""} {
		q, err := BuildListQuery(ListParams{Order: in}, testSortFields)
		require.NoError(t, err, "order=%s", in)
		require.False(t, q.Descending, "order=%s", in)
	}
	for _, in := range []string{"desc", "DESC", "Desc"} {
		q, err := BuildListQuery(ListParams{Order: in}, testSortFields)
		require.NoError(t, err, "order=%s", in)
		require.True(t, q.Descending, "order=%s", in)
	}
	_, err := BuildListQuery(ListParams{Order: "sideways"}, testSortFields)
	require.Error(t, err)
	require.Equal(t, KindValidation, KindOf(err))
}

func TestBuildListQuery_Cursor(t *testing.T) {
	id := primitive.NewObjectID().Hex()
	q, err := BuildListQuery(ListParams{AfterID: id}, testSortFields)
	require.NoError(t, err)
	require.Equal(t, id, q.AfterID)

	_, err = BuildListQuery(ListParams{AfterID: "not-a-cursor"}, testSortFields)
	require.Error(t, err)
	require.Equal(t, KindValidation, KindOf(err))
}

func TestNewPage(t *testing.T) {
	mk := func(n int) []Document {
		out := make([]Document, n)
		for i := range out {
			out[i] = Document{"_id": primitive.NewObjectID().Hex()}
		}
		return out
	}

	// empty page
	p := NewPage(nil, 5)
	require.NotNil(t, p.Items)
	require.Empty(t, p.Items)
	require.False(t, p.HasMore)
	require.Nil(t, p.NextCursor)

	// short page: fewer than limit
	p = NewPage(mk(3), 5)
	require.Len(t, p.Items, 3)
	require.False(t, p.HasMore)
	require.Nil(t, p.NextCursor)

	// exactly limit, no overfetch row: last page
	p = NewPage(mk(5), 5)
	require.Len(t, p.Items, 5)
	require.False(t, p.HasMore)
	require.Nil(t, p.NextCursor)

	// limit+1: more pages, cursor points at last returned item
	docs := mk(6)
	p = NewPage(docs, 5)
	require.Len(t, p.Items, 5)
	require.True(t, p.HasMore)
	require.NotNil(t, p.NextCursor)
	require.Equal(t, docs[4]["_id"], *p.NextCursor)
}
