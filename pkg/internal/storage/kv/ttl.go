package kv

import (
	"bytes"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// ttlEnvelope 给不支持按键 TTL 的后端补齐过期语义.
// 带 TTL 的值序列化为 magic 前缀 + JSON, 不带 TTL 的值原样存储.
const ttlMagic = "IVTTL1:"

type ttlEnvelope struct {
	Value     []byte `json:"v"`
	ExpiresAt int64  `json:"e"` // unix seconds
}

// wrapTTL ttl>0 时包装为带过期时间的信封, 否则返回原值.
func wrapTTL(value []byte, ttl time.Duration) ([]byte, error) {
	if ttl <= 0 {
		return value, nil
	}

	env := ttlEnvelope{Value: value, ExpiresAt: time.Now().Add(ttl).Unix()}

	b, err := sonic.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal ttl envelope: %w", err)
	}

	return append([]byte(ttlMagic), b...), nil
}

// unwrapTTL 解开信封并判断过期. 非信封值原样返回.
func unwrapTTL(b []byte, now time.Time) (value []byte, expired bool, err error) {
	if !bytes.HasPrefix(b, []byte(ttlMagic)) {
		return b, false, nil
	}

	var env ttlEnvelope
	if err := sonic.Unmarshal(b[len(ttlMagic):], &env); err != nil {
		return nil, false, fmt.Errorf("unmarshal ttl envelope: %w", err)
	}

	if env.ExpiresAt > 0 && !now.Before(time.Unix(env.ExpiresAt, 0)) {
		return nil, true, nil
	}

	return env.Value, false, nil
}
