package store

import (
	"context"
	"strings"

	"github.com/Luismorlan/coursehub/model"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// Marks the document hash as existing. The hash also holds _seq, the
// score of the next list member. Neither is exposed as a document field.
const redisKindField = "_kind"

// Lists are sorted sets scored by a per-document sequence so that ZRANGE
// returns members in first-insert order. The existence check on the document
// hash and the mutation run inside one script.
var (
	// createScript writes the hash and every list in one step. KEYS[1] is the
	// document hash, KEYS[2..] the list keys. ARGV is the kind, the number of
	// fields, the field/value pairs, then per list its size and members.
	createScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
local hash = {'_kind', ARGV[1]}
local i = 3
for f = 1, tonumber(ARGV[2]) do
  table.insert(hash, ARGV[i])
  table.insert(hash, ARGV[i + 1])
  i = i + 2
end
local seq = 0
for k = 2, #KEYS do
  redis.call('DEL', KEYS[k])
  local n = tonumber(ARGV[i])
  i = i + 1
  for m = 1, n do
    seq = seq + 1
    redis.call('ZADD', KEYS[k], seq, ARGV[i])
    i = i + 1
  end
end
table.insert(hash, '_seq')
table.insert(hash, seq)
redis.call('HSET', KEYS[1], unpack(hash))
return 1
`)

	addToSetScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return -1
end
if redis.call('ZSCORE', KEYS[2], ARGV[1]) then
  return 0
end
local seq = redis.call('HINCRBY', KEYS[1], '_seq', 1)
redis.call('ZADD', KEYS[2], seq, ARGV[1])
return 1
`)

	removeFromSetScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return -1
end
return redis.call('ZREM', KEYS[2], ARGV[1])
`)

	setFieldScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return -1
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
return 1
`)
)

type RedisStore struct {
	client    *redis.Client
	keyParser RedisKeyParser
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, keyParser: NewRedisKeyParser()}
}

func (s *RedisStore) Get(ctx context.Context, kind model.Kind, id string) (*model.Document, error) {
	if err := validateKey(kind, id); err != nil {
		return nil, err
	}
	docKey, err := s.keyParser.EncodeDocKey(kind, id)
	if err != nil {
		return nil, err
	}

	lists := model.SetFieldsOf(kind)
	var hash *redis.StringStringMapCmd
	ranges := make([]*redis.StringSliceCmd, len(lists))
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		hash = pipe.HGetAll(ctx, docKey)
		for i, list := range lists {
			setKey, _ := s.keyParser.EncodeSetKey(kind, id, list)
			ranges[i] = pipe.ZRange(ctx, setKey, 0, -1)
		}
		return nil
	})
	if err != nil {
		return nil, unavailable("get", err)
	}

	fields := hash.Val()
	if _, ok := fields[redisKindField]; !ok {
		return nil, notFound(kind, id)
	}
	doc := model.NewDocument(kind, id)
	for k, v := range fields {
		if strings.HasPrefix(k, "_") {
			continue
		}
		doc.Fields[k] = v
	}
	for i, list := range lists {
		doc.Sets[list] = append([]string{}, ranges[i].Val()...)
	}
	return doc, nil
}

func (s *RedisStore) Create(ctx context.Context, doc *model.Document) error {
	if err := validateDocument(doc); err != nil {
		return err
	}
	docKey, err := s.keyParser.EncodeDocKey(doc.Kind, doc.ID)
	if err != nil {
		return err
	}

	keys := []string{docKey}
	args := []interface{}{string(doc.Kind), len(doc.Fields)}
	for k, v := range doc.Fields {
		args = append(args, k, v)
	}
	for _, list := range model.SetFieldsOf(doc.Kind) {
		setKey, _ := s.keyParser.EncodeSetKey(doc.Kind, doc.ID, list)
		keys = append(keys, setKey)
		members := model.NewIDSet(doc.Sets[list]...).Slice()
		args = append(args, len(members))
		for _, m := range members {
			args = append(args, m)
		}
	}

	created, err := createScript.Run(ctx, s.client, keys, args...).Int64()
	if err != nil {
		return unavailable("create", err)
	}
	if created == 0 {
		return errors.Wrapf(ErrAlreadyExists, "%s %s", doc.Kind, doc.ID)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, kind model.Kind, id string) error {
	if err := validateKey(kind, id); err != nil {
		return err
	}
	docKey, err := s.keyParser.EncodeDocKey(kind, id)
	if err != nil {
		return err
	}
	keys := []string{docKey}
	for _, list := range model.SetFieldsOf(kind) {
		setKey, _ := s.keyParser.EncodeSetKey(kind, id, list)
		keys = append(keys, setKey)
	}
	return unavailable("delete", s.client.Del(ctx, keys...).Err())
}

func (s *RedisStore) SetField(ctx context.Context, kind model.Kind, id string, field string, value string) error {
	if err := validateScalarField(kind, id, field); err != nil {
		return err
	}
	if strings.HasPrefix(field, "_") {
		return model.NewValidationError("field names starting with _ are reserved", field)
	}
	docKey, err := s.keyParser.EncodeDocKey(kind, id)
	if err != nil {
		return err
	}
	return s.runScript(ctx, setFieldScript, "set field", kind, id, []string{docKey}, field, value)
}

func (s *RedisStore) AddToSet(ctx context.Context, kind model.Kind, id string, field string, member string) error {
	if err := validateSetField(kind, id, field, member); err != nil {
		return err
	}
	keys, err := s.setKeys(kind, id, field)
	if err != nil {
		return err
	}
	return s.runScript(ctx, addToSetScript, "add to set", kind, id, keys, member)
}

func (s *RedisStore) RemoveFromSet(ctx context.Context, kind model.Kind, id string, field string, member string) error {
	if err := validateSetField(kind, id, field, member); err != nil {
		return err
	}
	keys, err := s.setKeys(kind, id, field)
	if err != nil {
		return err
	}
	return s.runScript(ctx, removeFromSetScript, "remove from set", kind, id, keys, member)
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) setKeys(kind model.Kind, id string, field string) ([]string, error) {
	docKey, err := s.keyParser.EncodeDocKey(kind, id)
	if err != nil {
		return nil, err
	}
	setKey, err := s.keyParser.EncodeSetKey(kind, id, field)
	if err != nil {
		return nil, err
	}
	return []string{docKey, setKey}, nil
}

// runScript executes a mutation script. Scripts return -1 when the document
// hash does not exist.
func (s *RedisStore) runScript(ctx context.Context, script *redis.Script, op string, kind model.Kind, id string, keys []string, args ...interface{}) error {
	res, err := script.Run(ctx, s.client, keys, args...).Int64()
	if err != nil {
		return unavailable(op, err)
	}
	if res < 0 {
		return notFound(kind, id)
	}
	return nil
}
