// Package s3 处理对象存储操作，基于 MinIO 客户端提供预签名访问能力.
package s3

import (
	"context"
	"fmt"
	"net/url"
	"time"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yeisme/ingestvault/pkg/configs"
	nlog "github.com/yeisme/ingestvault/pkg/log"
)

// Client 包装 MinIO 客户端.
type Client struct {
	*minio.Client
}

// normalizeEndpoint 允许用户传完整 schema endpoint（http:// 或 https://），
// 返回纯 host 形式以及是否强制 SSL.
func normalizeEndpoint(endpoint string, useSSL bool) (string, bool) {
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		if u.Scheme == "https" {
			return u.Host, true
		}

		return u.Host, useSSL
	}

	return endpoint, useSSL
}

// New 初始化默认 MinIO 客户端，指向配置中的 endpoint.
func New(ctx context.Context) (*Client, error) {
	cfg := configs.GetConfig().S3

	cli, err := newForEndpoint(cfg.Endpoint, &cfg)
	if err != nil {
		return nil, err
	}

	nlog.Logger().Info().Str("endpoint", cfg.Endpoint).Msg("s3 connected")

	return cli, nil
}

// NewForHost 为指定 host 创建 MinIO 客户端，凭证沿用全局配置.
// 对象记录自带存储位置，预签名必须针对对象所在的 host 进行.
func NewForHost(host string) (*Client, error) {
	cfg := configs.GetConfig().S3

	return newForEndpoint(host, &cfg)
}

func newForEndpoint(endpoint string, cfg *configs.S3Config) (*Client, error) {
	host, useSSL := normalizeEndpoint(endpoint, cfg.UseSSL)

	cli, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client for %s: %w", endpoint, err)
	}

	cli.SetAppInfo("ingestvault", configs.AppVersion)

	return &Client{Client: cli}, nil
}

// PresignedGetURL 为对象生成限时下载地址.
func (c *Client) PresignedGetURL(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	u, err := c.PresignedGetObject(ctx, bucket, key, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign %s/%s: %w", bucket, key, err)
	}

	return u.String(), nil
}

// HealthCheck 简单的健康检查，通过列出桶来验证连接.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.ListBuckets(ctx)
	return err
}

// Close 关闭 S3 客户端连接（无实际操作，接口兼容）.
func (c *Client) Close() error {
	return nil
}

func (c *Client) GetConfig() configs.S3Config {
	return configs.GetConfig().S3
}
