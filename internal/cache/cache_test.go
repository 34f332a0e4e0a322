package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestMemory_SetGetDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewMemory("test")

	if err := c.Set(ctx, "k1", "v1", time.Minute); err != nil {
		t.Fatalf("Set err: %v", err)
	}
	got, err := c.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if got != "v1" {
		t.Fatalf("got %q want %q", got, "v1")
	}

	ok, err := c.Exists(ctx, "k1")
	if err != nil || !ok {
		t.Fatalf("Exists = %v, %v; want true, nil", ok, err)
	}

	if err := c.Delete(ctx, "k1"); err != nil {
		t.Fatalf("Delete err: %v", err)
	}
	if _, err := c.Get(ctx, "k1"); !IsNotFound(err) {
		t.Fatalf("esperaba ErrNotFound tras Delete, got %v", err)
	}
}

func TestMemory_TTLExpira(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewMemory("")

	if err := c.Set(ctx, "fugaz", "x", 20*time.Millisecond); err != nil {
		t.Fatalf("Set err: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	if _, err := c.Get(ctx, "fugaz"); !IsNotFound(err) {
		t.Fatalf("esperaba ErrNotFound tras expiración, got %v", err)
	}
	ok, _ := c.Exists(ctx, "fugaz")
	if ok {
		t.Fatal("Exists = true tras expiración")
	}
}

func TestRedis_SetGetDelete(t *testing.T) {
	t.Parallel()
	srv := miniredis.RunT(t)
	ctx := context.Background()

	c, err := NewRedis(Config{Addr: srv.Addr(), Prefix: "cg"})
	if err != nil {
		t.Fatalf("NewRedis err: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "k1", "v1", time.Minute); err != nil {
		t.Fatalf("Set err: %v", err)
	}
	// La key física lleva el prefijo.
	if !srv.Exists("cg:k1") {
		t.Fatal("la key prefijada no existe en redis")
	}

	got, err := c.Get(ctx, "k1")
	if err != nil || got != "v1" {
		t.Fatalf("Get = %q, %v; want v1, nil", got, err)
	}

	if err := c.Delete(ctx, "k1"); err != nil {
		t.Fatalf("Delete err: %v", err)
	}
	if _, err := c.Get(ctx, "k1"); !IsNotFound(err) {
		t.Fatalf("esperaba ErrNotFound tras Delete, got %v", err)
	}
}

func TestRedis_TTLExpira(t *testing.T) {
	t.Parallel()
	srv := miniredis.RunT(t)
	ctx := context.Background()

	c, err := NewRedis(Config{Addr: srv.Addr()})
	if err != nil {
		t.Fatalf("NewRedis err: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "fugaz", "x", time.Minute); err != nil {
		t.Fatalf("Set err: %v", err)
	}
	srv.FastForward(2 * time.Minute)

	if _, err := c.Get(ctx, "fugaz"); !IsNotFound(err) {
		t.Fatalf("esperaba ErrNotFound tras expiración, got %v", err)
	}
}

func TestNew_SeleccionaBackend(t *testing.T) {
	t.Parallel()

	c, err := New(Config{})
	if err != nil {
		t.Fatalf("New memory err: %v", err)
	}
	if _, ok := c.(*memoryClient); !ok {
		t.Fatalf("esperaba memoryClient, got %T", c)
	}

	srv := miniredis.RunT(t)
	c, err = New(Config{Addr: srv.Addr()})
	if err != nil {
		t.Fatalf("New redis err: %v", err)
	}
	if _, ok := c.(*redisClient); !ok {
		t.Fatalf("esperaba redisClient, got %T", c)
	}
}
