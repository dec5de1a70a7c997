// common/response_test.go
package common

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteList(t *testing.T) {
	t.Run("nil slice is written as empty array", func(t *testing.T) {
		rr := httptest.NewRecorder()
		var items []string

		WriteList(rr, items, 0, NewPageRequest(2, 10))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"result":"Success","code":"0000","message":"OK","isNeedLogin":false,"accessDenied":false,"items":[],"total":0,"page":2,"size":10}`, rr.Body.String())
	})

	t.Run("items are kept", func(t *testing.T) {
		rr := httptest.NewRecorder()

		WriteList(rr, []int{1, 2}, 12, NewPageRequest(0, 2))

		var body ListResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, int64(12), body.Total)
		assert.Len(t, body.Items, 2)
	})
}

func TestWriteData(t *testing.T) {
	rr := httptest.NewRecorder()

	WriteData(rr, http.StatusCreated, "Created", map[string]int{"id": 4})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"result":"Success","code":"0000","message":"Created","isNeedLogin":false,"accessDenied":false,"data":{"id":4}}`, rr.Body.String())
}

func TestNewPageRequest(t *testing.T) {
	assert.Equal(t, PageRequest{Page: 0, Size: DefaultPageSize}, NewPageRequest(-1, 0))
	assert.Equal(t, PageRequest{Page: 3, Size: MaxPageSize}, NewPageRequest(3, 1000))

	huge := NewPageRequest(math.MaxInt, MaxPageSize)
	assert.Equal(t, MaxPage, huge.Page)
	assert.Equal(t, uint64(MaxPage)*uint64(MaxPageSize), huge.Offset())
	assert.Less(t, huge.Offset(), uint64(math.MaxInt64))

	p := NewPageRequest(2, 15)
	assert.Equal(t, uint64(30), p.Offset())
	assert.Equal(t, uint64(15), p.Limit())
}
