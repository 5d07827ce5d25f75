package main

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/log"
	"github.com/gofiber/fiber/v3/middleware/logger"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/meikuraledutech/salbp"
)

var (
	errSessionNotFound = errors.New("session not found")
	errBadStation      = errors.New("invalid station id")
)

// schemaStore is implemented by stores that own database tables.
type schemaStore interface {
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error
}

// sessionView is a session snapshot tagged with its id.
type sessionView struct {
	ID string `json:"id"`
	salbp.Snapshot
}

type instanceBody struct {
	Instance string `json:"instance"`
}

type taskBody struct {
	Task string `json:"task"`
}

func newApp(store salbp.Store, sess *sessions, defaultInstance string) *fiber.App {
	app := fiber.New(fiber.Config{AppName: "salbp"})
	app.Use(recoverer.New())
	app.Use(logger.New())

	// ── Schema ────────────────────────────────────────────────────────
	if ss, ok := store.(schemaStore); ok {
		app.Post("/schema", func(c fiber.Ctx) error {
			if err := ss.CreateSchema(c.Context()); err != nil {
				return c.Status(500).JSON(fiber.Map{"error": err.Error()})
			}
			return c.JSON(fiber.Map{"message": "schema created"})
		})

		app.Delete("/schema", func(c fiber.Ctx) error {
			if err := ss.DropSchema(c.Context()); err != nil {
				return c.Status(500).JSON(fiber.Map{"error": err.Error()})
			}
			return c.JSON(fiber.Map{"message": "schema dropped"})
		})
	}

	// ── Catalog ───────────────────────────────────────────────────────
	app.Get("/instances", func(c fiber.Ctx) error {
		names, err := store.ListInstances(c.Context())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(names)
	})

	app.Get("/instances/:name", func(c fiber.Ctx) error {
		text, err := store.GetInstance(c.Context(), c.Params("name"))
		if err != nil {
			return fail(c, err)
		}
		inst := salbp.ParseInstance(text)
		return c.JSON(fiber.Map{
			"name":     c.Params("name"),
			"instance": inst,
			"dangling": inst.Dangling(),
		})
	})

	// ── Sessions ──────────────────────────────────────────────────────
	app.Post("/sessions", func(c fiber.Ctx) error {
		var body instanceBody
		if err := bindOptional(c, &body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		name := body.Instance
		if name == "" {
			name = defaultInstance
		}

		g := salbp.NewGame()
		if _, err := g.Switch(c.Context(), store, name); err != nil {
			return fail(c, err)
		}
		id := sess.create(g)
		log.Infof("session %s started on %s (%d active)", id, name, sess.count())
		return respond(c, 201, id, g)
	})

	app.Get("/sessions/:id", withGame(sess, func(c fiber.Ctx, g *salbp.Game) error {
		return respond(c, 200, c.Params("id"), g)
	}))

	app.Delete("/sessions/:id", func(c fiber.Ctx) error {
		if !sess.delete(c.Params("id")) {
			return fail(c, errSessionNotFound)
		}
		return c.SendStatus(204)
	})

	app.Post("/sessions/:id/switch", withGame(sess, func(c fiber.Ctx, g *salbp.Game) error {
		var body instanceBody
		if err := bindOptional(c, &body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}

		var err error
		if body.Instance != "" {
			_, err = g.Switch(c.Context(), store, body.Instance)
		} else {
			_, err = g.SwitchRandom(c.Context(), store, sess.rng)
		}
		if err != nil {
			return fail(c, err)
		}
		return respond(c, 200, c.Params("id"), g)
	}))

	app.Post("/sessions/:id/reset", withGame(sess, func(c fiber.Ctx, g *salbp.Game) error {
		if err := g.Reset(); err != nil {
			return fail(c, err)
		}
		return respond(c, 200, c.Params("id"), g)
	}))

	app.Post("/sessions/:id/validate", withGame(sess, func(c fiber.Ctx, g *salbp.Game) error {
		verdict, err := g.Validate(c.Context(), store)
		if err != nil {
			return fail(c, err)
		}
		snap, err := g.Snapshot()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{
			"verdict": verdict,
			"session": sessionView{ID: c.Params("id"), Snapshot: snap},
		})
	}))

	app.Get("/sessions/:id/solution", withGame(sess, func(c fiber.Ctx, g *salbp.Game) error {
		a := g.Assignment()
		if a == nil {
			return fail(c, salbp.ErrNoInstance)
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.SendString(salbp.FormatSolution(a.Stations()))
	}))

	// ── Selection ─────────────────────────────────────────────────────
	app.Post("/sessions/:id/select", withGame(sess, func(c fiber.Ctx, g *salbp.Game) error {
		var body taskBody
		if err := c.Bind().JSON(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		if err := g.Select(body.Task); err != nil {
			return fail(c, err)
		}
		return respond(c, 200, c.Params("id"), g)
	}))

	app.Delete("/sessions/:id/select", withGame(sess, func(c fiber.Ctx, g *salbp.Game) error {
		g.ClearSelection()
		return respond(c, 200, c.Params("id"), g)
	}))

	// ── Stations ──────────────────────────────────────────────────────
	app.Post("/sessions/:id/stations", withGame(sess, func(c fiber.Ctx, g *salbp.Game) error {
		if _, err := g.AddStation(); err != nil {
			return fail(c, err)
		}
		return respond(c, 201, c.Params("id"), g)
	}))

	app.Delete("/sessions/:id/stations/:station", withGame(sess, func(c fiber.Ctx, g *salbp.Game) error {
		station, err := stationParam(c)
		if err != nil {
			return fail(c, err)
		}
		if err := g.RemoveStation(station); err != nil {
			return fail(c, err)
		}
		return respond(c, 200, c.Params("id"), g)
	}))

	// ── Tasks ─────────────────────────────────────────────────────────
	app.Post("/sessions/:id/stations/:station/tasks", withGame(sess, func(c fiber.Ctx, g *salbp.Game) error {
		station, err := stationParam(c)
		if err != nil {
			return fail(c, err)
		}
		var body taskBody
		if err := bindOptional(c, &body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		if body.Task == "" {
			err = g.AssignSelected(station)
		} else {
			err = g.Assign(body.Task, station)
		}
		if err != nil {
			return fail(c, err)
		}
		return respond(c, 200, c.Params("id"), g)
	}))

	app.Delete("/sessions/:id/stations/:station/tasks/:task", withGame(sess, func(c fiber.Ctx, g *salbp.Game) error {
		station, err := stationParam(c)
		if err != nil {
			return fail(c, err)
		}
		if err := g.Unassign(station, c.Params("task")); err != nil {
			return fail(c, err)
		}
		return respond(c, 200, c.Params("id"), g)
	}))

	return app
}

// withGame resolves the :id session before calling h.
func withGame(sess *sessions, h func(fiber.Ctx, *salbp.Game) error) fiber.Handler {
	return func(c fiber.Ctx) error {
		g, ok := sess.get(c.Params("id"))
		if !ok {
			return fail(c, errSessionNotFound)
		}
		return h(c, g)
	}
}

func respond(c fiber.Ctx, status int, id string, g *salbp.Game) error {
	snap, err := g.Snapshot()
	if err != nil {
		return fail(c, err)
	}
	return c.Status(status).JSON(sessionView{ID: id, Snapshot: snap})
}

// bindOptional decodes a JSON body when one was sent.
func bindOptional(c fiber.Ctx, v any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return c.Bind().JSON(v)
}

func stationParam(c fiber.Ctx) (int, error) {
	id, err := strconv.Atoi(c.Params("station"))
	if err != nil {
		return 0, errBadStation
	}
	return id, nil
}

// fail maps domain errors to HTTP statuses. Rule violations are expected
// refusals and carry their details for the player.
func fail(c fiber.Ctx, err error) error {
	var v *salbp.Violation
	switch {
	case errors.As(err, &v):
		return c.Status(422).JSON(fiber.Map{"error": v.Error(), "violation": v})
	case errors.Is(err, errSessionNotFound),
		errors.Is(err, salbp.ErrInstanceNotFound),
		errors.Is(err, salbp.ErrSolutionNotFound),
		errors.Is(err, salbp.ErrUnknownTask),
		errors.Is(err, salbp.ErrUnknownStation),
		errors.Is(err, salbp.ErrNotInStation):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, salbp.ErrIncomplete),
		errors.Is(err, salbp.ErrNotSelected),
		errors.Is(err, salbp.ErrNoInstance),
		errors.Is(err, salbp.ErrEmptyCatalog):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, salbp.ErrInvalidName), errors.Is(err, errBadStation):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
	return c.Status(500).JSON(fiber.Map{"error": err.Error()})
}
