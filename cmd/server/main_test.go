package main

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	postgresRepo "github.com/iho/walletledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/walletledger/internal/adapter/repository/redis"
	"github.com/iho/walletledger/internal/infrastructure/config"
	"github.com/iho/walletledger/internal/infrastructure/eventpublisher"
)

func TestListenAddr(t *testing.T) {
	if got := listenAddr("8080"); got != ":8080" {
		t.Fatalf("expected :8080, got %s", got)
	}
}

func TestSettlementSeed(t *testing.T) {
	if got := settlementSeed(42); got != 42 {
		t.Fatalf("expected configured seed, got %d", got)
	}
	if got := settlementSeed(0); got == 0 {
		t.Fatalf("expected a clock-derived seed")
	}
}

func TestBuildCache(t *testing.T) {
	if _, ok := buildCache(nil, "p:").(*redisRepo.NoopCache); !ok {
		t.Fatalf("expected noop cache without a redis client")
	}

	client := goredis.NewClient(&goredis.Options{Addr: miniredis.RunT(t).Addr()})
	defer client.Close()

	if _, ok := buildCache(client, "p:").(*redisRepo.Cache); !ok {
		t.Fatalf("expected redis cache with a client")
	}
}

func TestBuildOutboxDisabled(t *testing.T) {
	repo := buildOutbox(&config.Config{OutboxEnabled: false}, nil)
	if _, ok := repo.(*postgresRepo.NullOutboxRepository); !ok {
		t.Fatalf("expected null outbox when disabled, got %T", repo)
	}
}

func TestBuildPublisher(t *testing.T) {
	if _, ok := buildPublisher(nil, "events", zerolog.Nop()).(*eventpublisher.LogPublisher); !ok {
		t.Fatalf("expected log publisher without redis")
	}

	client := goredis.NewClient(&goredis.Options{Addr: miniredis.RunT(t).Addr()})
	defer client.Close()

	if _, ok := buildPublisher(client, "events", zerolog.Nop()).(*eventpublisher.RedisPublisher); !ok {
		t.Fatalf("expected redis publisher with a client")
	}
}
