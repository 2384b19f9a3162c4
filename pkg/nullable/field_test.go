package nullable

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type patch struct {
	FolderID Field[string] `json:"folder_id"`
}

func TestField_States(t *testing.T) {
	a := Absent[string]()
	assert.False(t, a.Present())
	assert.False(t, a.IsNull())
	_, ok := a.Get()
	assert.False(t, ok)

	n := Null[string]()
	assert.True(t, n.Present())
	assert.True(t, n.IsNull())
	assert.Nil(t, n.Ptr())

	v := Value("x")
	got, ok := v.Get()
	assert.True(t, ok)
	assert.Equal(t, "x", got)
	assert.Equal(t, "x", *v.Ptr())
}

func TestField_FromPtr(t *testing.T) {
	assert.True(t, FromPtr[string](nil).IsNull())
	s := "abc"
	got, ok := FromPtr(&s).Get()
	require.True(t, ok)
	assert.Equal(t, "abc", got)
}

func TestField_UnmarshalDistinguishesAbsentAndNull(t *testing.T) {
	var p patch
	require.NoError(t, json.Unmarshal([]byte(`{}`), &p))
	assert.False(t, p.FolderID.Present())

	p = patch{}
	require.NoError(t, json.Unmarshal([]byte(`{"folder_id": null}`), &p))
	assert.True(t, p.FolderID.Present())
	assert.True(t, p.FolderID.IsNull())

	p = patch{}
	require.NoError(t, json.Unmarshal([]byte(`{"folder_id": "01F"}`), &p))
	got, ok := p.FolderID.Get()
	assert.True(t, ok)
	assert.Equal(t, "01F", got)
}

func TestField_UnmarshalRejectsWrongType(t *testing.T) {
	var p patch
	assert.Error(t, json.Unmarshal([]byte(`{"folder_id": 12}`), &p))
}
