package redis

import (
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/metaland/auction-api/base/ctx"
	"github.com/metaland/auction-api/base/metrics"
	"github.com/metaland/auction-api/domain/keys"
)

const (
	// retTTLNoKey is the return value of TTL when the key does not exist
	retTTLNoKey = -2

	// retTTLNoExpire is the return value of TTL when the key exists but
	// has no associated expire
	retTTLNoExpire = -1
)

type redImpl struct {
	name  string
	met   metrics.Service
	pools *Pools
}

// Pools represents different pool types
type Pools struct {
	Src *redis.Pool
}

// New redis service over a redigo pool
func New(name string, met metrics.Service, pools *Pools) Service {
	return &redImpl{
		name:  name,
		met:   met,
		pools: pools,
	}
}

func (r *redImpl) getConn() (redis.Conn, error) {
	defer r.met.BumpTime("getconn.time", "cluster", r.name).End()

	conn := r.pools.Src.Get()
	if err := conn.Err(); err != nil {
		r.met.BumpSum("getConn.err", 1, "cluster", r.name, "reason", err.Error())
		return nil, err
	}

	return conn, nil
}

func (r *redImpl) connDo(context ctx.Ctx, commandName string, args ...interface{}) (interface{}, error) {
	conn, err := r.getConn()
	if err != nil {
		return nil, err
	}

	reply, err := conn.Do(commandName, args...)

	// Closing conn explicitly asap improves redigo's performance, because
	// the longer a connection is held, the more connections the pool needs
	// to handle at the same time.
	if cerr := conn.Close(); cerr != nil {
		r.met.BumpSum("conn.Close.err", 1, "cluster", r.name)
	}
	return reply, err
}

func (r *redImpl) tags(funcName, key string) []string {
	return []string{
		"func", funcName,
		"cluster", r.name,
		"prefix", keys.GetPrefix(key),
	}
}

func (r *redImpl) Get(context ctx.Ctx, key string) ([]byte, error) {
	tags := r.tags("get", key)
	defer r.met.BumpTime("time", tags...).End()

	val, err := redis.Bytes(r.connDo(context, "GET", key))
	if err == redis.ErrNil {
		return nil, ErrNotFound
	}
	if err != nil {
		r.met.BumpSum("get.err", 1, tags...)
		return nil, err
	}
	r.met.BumpHistogram("bytes", float64(len(val)), tags...)
	return val, nil
}

func (r *redImpl) Set(context ctx.Ctx, key string, val []byte, expire time.Duration) error {
	tags := r.tags("set", key)
	defer r.met.BumpTime("time", tags...).End()

	var err error
	if expire > 0 {
		_, err = r.connDo(context, "SET", key, val, "PX", int64(expire/time.Millisecond))
	} else {
		_, err = r.connDo(context, "SET", key, val)
	}
	if err != nil {
		r.met.BumpSum("set.err", 1, tags...)
		return err
	}
	return nil
}

func (r *redImpl) Del(context ctx.Ctx, ks ...string) (int, error) {
	if len(ks) == 0 {
		return 0, nil
	}
	tags := r.tags("del", ks[0])
	defer r.met.BumpTime("time", tags...).End()

	args := make([]interface{}, 0, len(ks))
	for _, k := range ks {
		args = append(args, k)
	}
	n, err := redis.Int(r.connDo(context, "DEL", args...))
	if err != nil {
		r.met.BumpSum("del.err", 1, tags...)
		return 0, err
	}
	return n, nil
}

func (r *redImpl) Exists(context ctx.Ctx, key string) (bool, error) {
	tags := r.tags("exists", key)
	defer r.met.BumpTime("time", tags...).End()

	n, err := redis.Int(r.connDo(context, "EXISTS", key))
	if err != nil {
		r.met.BumpSum("exists.err", 1, tags...)
		return false, err
	}
	return n == 1, nil
}

func (r *redImpl) Incrby(context ctx.Ctx, key string, val int) (int64, error) {
	tags := r.tags("incrby", key)
	defer r.met.BumpTime("time", tags...).End()

	n, err := redis.Int64(r.connDo(context, "INCRBY", key, val))
	if err != nil {
		r.met.BumpSum("incrby.err", 1, tags...)
		return 0, err
	}
	return n, nil
}

func (r *redImpl) TTL(context ctx.Ctx, key string) (int, error) {
	tags := r.tags("ttl", key)
	defer r.met.BumpTime("time", tags...).End()

	n, err := redis.Int(r.connDo(context, "TTL", key))
	if err != nil {
		r.met.BumpSum("ttl.err", 1, tags...)
		return 0, err
	}
	switch n {
	case retTTLNoKey:
		return 0, ErrNotFound
	case retTTLNoExpire:
		return 0, nil
	default:
		return n, nil
	}
}
