package main

import (
	"bufio"
	"comicApi/models"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/glebarez/sqlite"
	goredis "github.com/go-redis/redis/v8"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// setupTestDB points DatabaseConnection at a fresh in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDb, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// Every connection to :memory: is its own database.
	sqlDb.SetMaxOpenConns(1)

	if err = MigrateDatabase(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	previous := DatabaseConnection
	DatabaseConnection = db

	t.Cleanup(func() {
		DatabaseConnection = previous
		_ = sqlDb.Close()
	})

	return db
}

// withConfig restores ServiceConfig after the test.
func withConfig(t *testing.T, mutate func(cfg *Config)) {
	t.Helper()

	previous := ServiceConfig
	cfg := DefaultConfig()
	mutate(&cfg)
	ServiceConfig = cfg

	t.Cleanup(func() { ServiceConfig = previous })
}

func insertExplanation(t *testing.T, db *gorm.DB, e models.Explanation) models.Explanation {
	t.Helper()

	if err := db.Create(&e).Error; err != nil {
		t.Fatalf("failed to insert explanation: %v", err)
	}

	return e
}

func insertPreferences(t *testing.T, db *gorm.DB, userId string, language string) {
	t.Helper()

	p := models.Preferences{UserId: userId, Language: language}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("failed to insert preferences: %v", err)
	}
}

func insertComicView(t *testing.T, db *gorm.DB, userId string, comicId string, createdAt time.Time) {
	t.Helper()

	v := models.ComicView{UserId: userId, ComicId: comicId, CreatedAt: createdAt}
	if err := db.Create(&v).Error; err != nil {
		t.Fatalf("failed to insert comic view: %v", err)
	}
}

// memoryIndex is an in-process ExplanationIndex.
type memoryIndex struct {
	mu   sync.Mutex
	docs map[string]models.IndexedExplanation
}

func useMemoryIndex(t *testing.T) *memoryIndex {
	t.Helper()

	idx := &memoryIndex{docs: map[string]models.IndexedExplanation{}}
	previous := SearchIndex
	SearchIndex = idx

	t.Cleanup(func() { SearchIndex = previous })

	return idx
}

func (m *memoryIndex) Index(_ context.Context, e *models.Explanation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.docs[e.ID] = *e.GetIndexedExplanation()
	return nil
}

func (m *memoryIndex) Remove(_ context.Context, explanationId string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.docs, explanationId)
	return nil
}

func (m *memoryIndex) Search(_ context.Context, query string, limit int) ([]models.IndexedExplanation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := make([]models.IndexedExplanation, 0)
	for _, d := range m.docs {
		if len(l) == limit {
			break
		}

		if strings.Contains(strings.ToLower(d.Explanation), strings.ToLower(query)) {
			l = append(l, d)
		}
	}

	return l, nil
}

func (m *memoryIndex) Reset(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.docs = map[string]models.IndexedExplanation{}
	return nil
}

func (m *memoryIndex) has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.docs[id]
	return ok
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	_ = resp.Body.Close()

	if err = sonic.Unmarshal(body, out); err != nil {
		t.Fatalf("failed to decode body %q: %v", body, err)
	}
}

// fakeRedis speaks just enough RESP for the rebuild status key.
type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
}

// useFakeRedis points RedisConnection at an in-process fakeRedis.
func useFakeRedis(t *testing.T) *fakeRedis {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	f := &fakeRedis{data: map[string]string{}}

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}

			go f.serve(conn)
		}
	}()

	client := goredis.NewClient(&goredis.Options{Addr: ln.Addr().String()})
	previous := RedisConnection
	RedisConnection = client

	t.Cleanup(func() {
		RedisConnection = previous
		_ = client.Close()
		_ = ln.Close()
	})

	return f
}

func (f *fakeRedis) set(key string, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.data[key] = value
}

func (f *fakeRedis) get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.data[key]
	return v, ok
}

func (f *fakeRedis) serve(conn net.Conn) {
	defer conn.Close()

	r := bufio.NewReader(conn)
	for {
		args, err := readRespCommand(r)
		if err != nil {
			return
		}

		if _, err = io.WriteString(conn, f.exec(args)); err != nil {
			return
		}
	}
}

func readRespCommand(r *bufio.Reader) ([]string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return nil, err
	}

	n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "*")))
	if err != nil {
		return nil, err
	}

	args := make([]string, 0, n)
	for i := 0; i < n; i++ {
		line, err = r.ReadString('\n')
		if err != nil {
			return nil, err
		}

		size, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "$")))
		if err != nil {
			return nil, err
		}

		buf := make([]byte, size+2)
		if _, err = io.ReadFull(r, buf); err != nil {
			return nil, err
		}

		args = append(args, string(buf[:size]))
	}

	return args, nil
}

func (f *fakeRedis) exec(args []string) string {
	if len(args) == 0 {
		return "-ERR empty command\r\n"
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch strings.ToLower(args[0]) {
	case "setnx":
		if _, ok := f.data[args[1]]; ok {
			return ":0\r\n"
		}
		f.data[args[1]] = args[2]
		return ":1\r\n"
	case "set":
		f.data[args[1]] = args[2]
		return "+OK\r\n"
	case "get":
		v, ok := f.data[args[1]]
		if !ok {
			return "$-1\r\n"
		}
		return fmt.Sprintf("$%d\r\n%s\r\n", len(v), v)
	case "del":
		n := 0
		for _, key := range args[1:] {
			if _, ok := f.data[key]; ok {
				delete(f.data, key)
				n++
			}
		}
		return fmt.Sprintf(":%d\r\n", n)
	}

	return fmt.Sprintf("-ERR unknown command '%s'\r\n", args[0])
}
