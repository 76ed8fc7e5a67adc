package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"twenty-one-go/internal/game/twentyone"
	"twenty-one-go/internal/models"
	"twenty-one-go/internal/tracing"
)

const defaultRedisPrefix = "tw1"

// RedisStore keeps each game in a hash. Per user it maintains a set of game
// ids and a title -> id hash that enforces unique titles.
//
//	<prefix>:game:<id>            hash{user_id, title, state}
//	<prefix>:user:<uid>:games     set of ids
//	<prefix>:user:<uid>:titles    hash{title: id}
type RedisStore struct {
	rdb    redis.Cmdable
	prefix string
	opts   []twentyone.Option
}

func NewRedis(rdb redis.Cmdable, prefix string, opts ...twentyone.Option) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{rdb: rdb, prefix: prefix, opts: opts}
}

// OpenRedis connects using a redis:// URL and checks the server responds.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (s *RedisStore) gameKey(id string) string {
	return s.prefix + ":game:" + id
}

func (s *RedisStore) gamesKey(userID int64) string {
	return s.prefix + ":user:" + strconv.FormatInt(userID, 10) + ":games"
}

func (s *RedisStore) titlesKey(userID int64) string {
	return s.prefix + ":user:" + strconv.FormatInt(userID, 10) + ":titles"
}

func (s *RedisStore) Create(ctx context.Context, userID int64, g *twentyone.Game) error {
	ctx, span := startGameSpan(ctx, "store.redis.Create", userID, g)
	defer span.End()

	state, err := encodeGame(g)
	if err != nil {
		return err
	}
	ok, err := s.rdb.HSetNX(ctx, s.titlesKey(userID), g.Title, g.ID).Result()
	if err != nil {
		return fmt.Errorf("redis reserve title: %w", err)
	}
	if !ok {
		return models.ErrDuplicateTitle
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.gameKey(g.ID), "user_id", userID, "title", g.Title, "state", state)
		pipe.SAdd(ctx, s.gamesKey(userID), g.ID)
		return nil
	})
	if err != nil {
		_ = s.rdb.HDel(ctx, s.titlesKey(userID), g.Title).Err()
		return fmt.Errorf("redis create game: %w", err)
	}
	return nil
}

type redisGame struct {
	userID int64
	title  string
	state  string
}

func (s *RedisStore) load(ctx context.Context, userID int64, id string) (*redisGame, error) {
	fields, err := s.rdb.HGetAll(ctx, s.gameKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis load game: %w", err)
	}
	return parseRedisGame(fields, userID)
}

func parseRedisGame(fields map[string]string, userID int64) (*redisGame, error) {
	if len(fields) == 0 {
		return nil, models.ErrGameNotFound
	}
	owner, err := strconv.ParseInt(fields["user_id"], 10, 64)
	if err != nil || owner != userID {
		return nil, models.ErrGameNotFound
	}
	return &redisGame{userID: owner, title: fields["title"], state: fields["state"]}, nil
}

func (s *RedisStore) Get(ctx context.Context, userID int64, id string) (*twentyone.Game, error) {
	ctx, span := tracing.StartSpan(ctx, "store.redis.Get", tracing.Game(userID, id)...)
	defer span.End()
	rg, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return decodeGame(rg.state, s.opts)
}

func (s *RedisStore) List(ctx context.Context, userID int64) ([]*twentyone.Game, error) {
	ctx, span := tracing.StartSpan(ctx, "store.redis.List", tracing.UserIDKey.Int64(userID))
	defer span.End()

	ids, err := s.rdb.SMembers(ctx, s.gamesKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list games: %w", err)
	}
	if len(ids) == 0 {
		return []*twentyone.Game{}, nil
	}
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, s.gameKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis list games: %w", err)
	}

	games := make([]*twentyone.Game, 0, len(ids))
	for _, cmd := range cmds {
		rg, err := parseRedisGame(cmd.Val(), userID)
		if err != nil {
			// set member without a hash, e.g. a delete that died halfway
			continue
		}
		g, err := decodeGame(rg.state, s.opts)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return twentyone.SortGames(games), nil
}

func (s *RedisStore) Save(ctx context.Context, userID int64, g *twentyone.Game) error {
	ctx, span := startGameSpan(ctx, "store.redis.Save", userID, g)
	defer span.End()
	if _, err := s.load(ctx, userID, g.ID); err != nil {
		return err
	}
	state, err := encodeGame(g)
	if err != nil {
		return err
	}
	return s.rdb.HSet(ctx, s.gameKey(g.ID), "state", state).Err()
}

func (s *RedisStore) Delete(ctx context.Context, userID int64, id string) error {
	ctx, span := tracing.StartSpan(ctx, "store.redis.Delete", tracing.Game(userID, id)...)
	defer span.End()
	rg, err := s.load(ctx, userID, id)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.gameKey(id))
		pipe.SRem(ctx, s.gamesKey(userID), id)
		pipe.HDel(ctx, s.titlesKey(userID), rg.title)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete game: %w", err)
	}
	return nil
}

func (s *RedisStore) TitleExists(ctx context.Context, userID int64, title string) (bool, error) {
	return s.rdb.HExists(ctx, s.titlesKey(userID), strings.TrimSpace(title)).Result()
}
