package containers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const redisImage = "redis:7.2-alpine"

type RedisContainer struct {
	container testcontainers.Container
}

func NewRedisContainer() *RedisContainer {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        redisImage,
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("error starting redis container: %v", err)
	}
	return &RedisContainer{container: container}
}

func (c *RedisContainer) Shutdown() {
	if err := c.container.Terminate(context.Background()); err != nil {
		log.Fatalf("error terminating redis container: %v", err)
	}
}

func (c *RedisContainer) URL() string {
	ctx := context.Background()
	host, err := c.container.Host(ctx)
	if err != nil {
		log.Fatalf("error getting redis host: %v", err)
	}
	port, err := c.container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		log.Fatalf("error getting redis port: %v", err)
	}
	return fmt.Sprintf("redis://%s:%s/0", host, port.Port())
}
