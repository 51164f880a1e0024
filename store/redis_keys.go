package store

import (
	"fmt"
	"strings"

	"github.com/Luismorlan/coursehub/model"
)

const redisKeyDelimiter = "__"

// RedisKeyParser builds the keys a document occupies in redis:
//
//	doc__<kind>__<id>            hash of scalar fields
//	set__<kind>__<id>__<list>    sorted set, one per list
type RedisKeyParser struct {
	delimiter string
}

func NewRedisKeyParser() RedisKeyParser {
	return RedisKeyParser{delimiter: redisKeyDelimiter}
}

func (r RedisKeyParser) ValidateId(id string) bool {
	return id != "" && !strings.Contains(id, r.delimiter)
}

func (r RedisKeyParser) EncodeDocKey(kind model.Kind, id string) (string, error) {
	if !r.ValidateId(id) {
		return "", model.NewValidationError(fmt.Sprintf("id must not be empty or contain %q", r.delimiter), "uuid")
	}
	return strings.Join([]string{"doc", string(kind), id}, r.delimiter), nil
}

func (r RedisKeyParser) EncodeSetKey(kind model.Kind, id string, list string) (string, error) {
	if !r.ValidateId(id) {
		return "", model.NewValidationError(fmt.Sprintf("id must not be empty or contain %q", r.delimiter), "uuid")
	}
	return strings.Join([]string{"set", string(kind), id, list}, r.delimiter), nil
}
