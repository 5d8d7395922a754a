package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeClient struct {
	data    map[string]string
	ttls    map[string]time.Duration
	failSet bool
	failGet bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeClient) Get(_ context.Context, key string) *redis.StringCmd {
	if f.failGet {
		return redis.NewStringResult("", errors.New("conn reset"))
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeClient) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	if f.failSet {
		return redis.NewStatusResult("", errors.New("read only"))
	}
	f.data[key] = string(value.([]byte))
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

type fixture struct {
	Team  string  `json:"team"`
	Price float64 `json:"price"`
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()

	Convey("Given a redis-backed cache", t, func() {
		client := newFakeClient()
		c := New(client)

		Convey("Set then Get round-trips JSON with the TTL", func() {
			So(c.Set(ctx, "k", fixture{Team: "T1", Price: 0.62}, time.Minute), ShouldBeNil)
			So(client.data["k"], ShouldEqual, `{"team":"T1","price":0.62}`)
			So(client.ttls["k"], ShouldEqual, time.Minute)

			var got fixture
			So(c.Get(ctx, "k", &got), ShouldBeNil)
			So(got, ShouldResemble, fixture{Team: "T1", Price: 0.62})
		})

		Convey("A missing key is ErrMiss", func() {
			var got fixture
			So(c.Get(ctx, "nope", &got), ShouldEqual, ErrMiss)
		})

		Convey("Corrupt payloads surface a decode error", func() {
			client.data["bad"] = "{"
			var got fixture
			err := c.Get(ctx, "bad", &got)
			So(err, ShouldNotBeNil)
			So(errors.Is(err, ErrMiss), ShouldBeFalse)
		})

		Convey("Backend errors are wrapped", func() {
			client.failSet = true
			So(c.Set(ctx, "k", 1, time.Second), ShouldNotBeNil)
		})
	})
}

func TestFetch(t *testing.T) {
	ctx := context.Background()

	Convey("Given Fetch over a cache", t, func() {
		client := newFakeClient()
		c := New(client)
		calls := 0
		load := func(context.Context) ([]fixture, error) {
			calls++
			return []fixture{{Team: "G2"}}, nil
		}

		Convey("The loader runs once and the result is reused", func() {
			v1, err := Fetch(ctx, c, "odds", time.Minute, load)
			So(err, ShouldBeNil)
			v2, err := Fetch(ctx, c, "odds", time.Minute, load)
			So(err, ShouldBeNil)
			So(calls, ShouldEqual, 1)
			So(v2, ShouldResemble, v1)
		})

		Convey("Cache failures fall through to the loader", func() {
			client.failGet = true
			client.failSet = true
			v, err := Fetch(ctx, c, "odds", time.Minute, load)
			So(err, ShouldBeNil)
			So(len(v), ShouldEqual, 1)
		})

		Convey("Loader errors are returned and not cached", func() {
			_, err := Fetch(ctx, c, "odds", time.Minute, func(context.Context) (int, error) {
				return 0, errors.New("down")
			})
			So(err, ShouldNotBeNil)
			So(client.data, ShouldNotContainKey, "odds")
		})

		Convey("A nil cache behaves like Noop", func() {
			_, err := Fetch[[]fixture](ctx, nil, "odds", time.Minute, load)
			So(err, ShouldBeNil)
			_, err = Fetch[[]fixture](ctx, nil, "odds", time.Minute, load)
			So(err, ShouldBeNil)
			So(calls, ShouldEqual, 2)
		})
	})
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()

	Convey("Given an in-process cache with a controllable clock", t, func() {
		now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		m := NewMemory()
		m.now = func() time.Time { return now }

		So(m.Set(ctx, "k", fixture{Team: "BLG"}, time.Minute), ShouldBeNil)

		Convey("Values are readable before expiry", func() {
			var got fixture
			So(m.Get(ctx, "k", &got), ShouldBeNil)
			So(got.Team, ShouldEqual, "BLG")
		})

		Convey("Values expire after the TTL", func() {
			now = now.Add(time.Minute)
			var got fixture
			So(m.Get(ctx, "k", &got), ShouldEqual, ErrMiss)
		})

		Convey("A zero TTL never expires", func() {
			So(m.Set(ctx, "forever", 1, 0), ShouldBeNil)
			now = now.Add(24 * time.Hour)
			var got int
			So(m.Get(ctx, "forever", &got), ShouldBeNil)
			So(got, ShouldEqual, 1)
		})
	})
}
