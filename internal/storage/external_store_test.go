package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func uniqueUID(prefix string) string {
	return fmt.Sprintf("%s:%d", prefix, time.Now().UnixNano())
}

func TestMongoStoreContract(t *testing.T) {
	uri := os.Getenv("STREAKD_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("STREAKD_TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := OpenMongo(ctx, uri, "streakd_test")
	if err != nil {
		t.Fatalf("open mongo: %v", err)
	}
	defer store.Close()

	uid := uniqueUID("mongo")
	t.Cleanup(func() { _, _ = store.c.DeleteOne(context.Background(), bson.M{"_id": uid}) })
	runStoreContract(t, store, uid)
}

func TestMongoStoreNormalizesBareStringTasks(t *testing.T) {
	uri := os.Getenv("STREAKD_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("STREAKD_TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := OpenMongo(ctx, uri, "streakd_test")
	if err != nil {
		t.Fatalf("open mongo: %v", err)
	}
	defer store.Close()

	uid := uniqueUID("mongo-legacy")
	t.Cleanup(func() { _, _ = store.c.DeleteOne(context.Background(), bson.M{"_id": uid}) })
	if _, err := store.c.InsertOne(ctx, bson.M{
		"_id":          uid,
		"tasks":        bson.A{"Stretch", bson.M{"id": int64(42), "text": "Journal"}},
		"currentDay":   2,
		"dailyRecords": bson.M{"2024-01-01": bson.A{bson.M{"id": "x", "text": "Stretch", "completed": true}}},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := store.Get(ctx, uid)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Tasks) != 2 || got.Tasks[0].Text != "Stretch" || got.Tasks[0].ID == "" || got.Tasks[1].ID != "42" {
		t.Fatalf("unexpected tasks: %#v", got.Tasks)
	}
	if got.DailyRecords[mustDate(t, "2024-01-01")].DayNumber != 0 {
		t.Fatalf("expected legacy day with day number 0: %#v", got.DailyRecords)
	}
}

func TestPostgresStoreContract(t *testing.T) {
	dsn := os.Getenv("STREAKD_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("STREAKD_TEST_POSTGRES_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := OpenPostgres(ctx, dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	defer store.Close()

	uid := uniqueUID("pg")
	t.Cleanup(func() { deleteRow(store.db, uid) })
	runStoreContract(t, store, uid)
}

func deleteRow(db *sql.DB, uid string) {
	_, _ = db.Exec(`DELETE FROM user_documents WHERE uid = $1`, uid)
}
