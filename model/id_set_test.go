package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDSetAddIsIdempotent(t *testing.T) {
	var s IDSet
	assert.True(t, s.Add("c1"))
	assert.False(t, s.Add("c1"))
	assert.True(t, s.Add("c2"))
	assert.Equal(t, []string{"c1", "c2"}, s.Slice())
	assert.Equal(t, 2, s.Len())
}

func TestIDSetRemoveAbsentIsNoop(t *testing.T) {
	s := NewIDSet("a", "b", "c")
	assert.False(t, s.Remove("zzz"))
	assert.True(t, s.Remove("b"))
	assert.False(t, s.Contains("b"))
	assert.Equal(t, []string{"a", "c"}, s.Slice())
}

func TestIDSetDeduplicatesOnConstruction(t *testing.T) {
	s := NewIDSet("a", "b", "a")
	assert.Equal(t, []string{"a", "b"}, s.Slice())
}

func TestIDSetSliceIsACopy(t *testing.T) {
	s := NewIDSet("a")
	out := s.Slice()
	out[0] = "mutated"
	assert.True(t, s.Contains("a"))

	var empty IDSet
	assert.NotNil(t, empty.Slice())
}

func TestIDSetJSON(t *testing.T) {
	u := User{UUID: "u1", StudentCourseList: NewIDSet("c1", "c2")}
	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"studentCourseList":["c1","c2"]`)
	assert.Contains(t, string(b), `"postList":[]`)

	var decoded User
	require.NoError(t, json.Unmarshal([]byte(`{"uuid":"u1","likedPostList":["p1","p1","p2"]}`), &decoded))
	assert.Equal(t, []string{"p1", "p2"}, decoded.LikedPostList.Slice())
}
