package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meikuraledutech/salbp"
	"github.com/meikuraledutech/salbp/postgres"
)

const instanceText = `<number of tasks>
3
<cycle time>
10
<task times>
1 4
2 5
3 3
<precedence relations>
1,3
<end>
`

const solutionText = `station_1: 1 3
station_2: 2
`

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	// Wire up the postgres implementation behind the Store interface.
	pg := postgres.New(pool)
	var store salbp.Store = pg

	// 1. Create tables
	if err := pg.CreateSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}
	fmt.Println("schema created")

	// ── Catalog ───────────────────────────────────────────────────────
	if err := store.PutInstance(ctx, "walkthrough", instanceText); err != nil {
		log.Fatalf("put instance: %v", err)
	}
	if err := store.PutSolution(ctx, "walkthrough", solutionText); err != nil {
		log.Fatalf("put solution: %v", err)
	}
	fmt.Println("instance and reference solution stored")

	// ── Load the puzzle ───────────────────────────────────────────────
	g := salbp.NewGame()
	inst, err := g.Switch(ctx, store, "walkthrough")
	if err != nil {
		log.Fatalf("switch: %v", err)
	}
	fmt.Println("\ninstance loaded:")
	printJSON(inst)

	// ── Play ──────────────────────────────────────────────────────────
	a, _ := g.AddStation()
	report("assign 3 to station A", g.Assign("3", a))
	report("assign 1 to station A", g.Assign("1", a))
	report("assign 3 to station A", g.Assign("3", a))
	report("assign 2 to station A", g.Assign("2", a))

	b, _ := g.AddStation()
	report("select 2", g.Select("2"))
	report("assign selection to station B", g.AssignSelected(b))

	// ── Validate ──────────────────────────────────────────────────────
	verdict, err := g.Validate(ctx, store)
	if err != nil {
		log.Fatalf("validate: %v", err)
	}
	fmt.Println("\nverdict:")
	printJSON(verdict)

	snap, err := g.Snapshot()
	if err != nil {
		log.Fatalf("snapshot: %v", err)
	}
	fmt.Println("\nsession:")
	printJSON(snap)

	// ── Cleanup ───────────────────────────────────────────────────────
	if err := store.DeleteInstance(ctx, "walkthrough"); err != nil {
		log.Fatalf("delete: %v", err)
	}
	fmt.Println("\ninstance deleted")
}

func report(action string, err error) {
	var v *salbp.Violation
	switch {
	case err == nil:
		fmt.Printf("%-32s ok\n", action)
	case errors.As(err, &v):
		fmt.Printf("%-32s refused (%s): %v\n", action, v.Rule, v)
	default:
		log.Fatalf("%s: %v", action, err)
	}
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
