package seeders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"makerspace/internal/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedCore creates the development users, training modules and equipment.
// Rows that already exist (by username or name) are left untouched.
func SeedCore(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("▶️  seeding users, training modules and equipment...")

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := seedUsers(ctx, tx); err != nil {
		return fmt.Errorf("users: %w", err)
	}
	modules, err := seedModules(ctx, tx)
	if err != nil {
		return fmt.Errorf("training modules: %w", err)
	}
	if err := seedEquipment(ctx, tx, modules); err != nil {
		return fmt.Errorf("equipment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	log.Println("✅ core data seeded")
	return nil
}

func seedUsers(ctx context.Context, tx pgx.Tx) error {
	const query = `
		INSERT INTO users (first_name, last_name, username, email, university_id, privilege)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (username) DO NOTHING`
	for _, u := range usersData {
		if _, err := tx.Exec(ctx, query, u.FirstName, u.LastName, u.Username, u.Email,
			repositories.HashUniversityID(u.UniversityID), u.Privilege); err != nil {
			return err
		}
		log.Printf("  - user %s (%s, card %s)", u.Username, u.Privilege, u.UniversityID)
	}
	return nil
}

// findOrCreate returns the id of the row named name, inserting it with insert when absent.
func findOrCreate(ctx context.Context, tx pgx.Tx, table, name, insert string, args ...interface{}) (uint64, error) {
	var id uint64
	err := tx.QueryRow(ctx, fmt.Sprintf("SELECT id FROM %s WHERE name = $1", table), name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}
	err = tx.QueryRow(ctx, insert, args...).Scan(&id)
	return id, err
}

func seedModules(ctx context.Context, tx pgx.Tx) (map[string]uint64, error) {
	ids := make(map[string]uint64, len(modulesData))
	for _, m := range modulesData {
		quiz, err := json.Marshal(m.Quiz)
		if err != nil {
			return nil, err
		}
		id, err := findOrCreate(ctx, tx, "training_modules", m.Name,
			"INSERT INTO training_modules (name, quiz) VALUES ($1, $2) RETURNING id", m.Name, quiz)
		if err != nil {
			return nil, err
		}
		ids[m.Name] = id
		log.Printf("  - module %q (#%d)", m.Name, id)
	}
	return ids, nil
}

func seedEquipment(ctx context.Context, tx pgx.Tx, modules map[string]uint64) error {
	for _, e := range equipmentData {
		id, err := findOrCreate(ctx, tx, "equipment", e.Name,
			"INSERT INTO equipment (name) VALUES ($1) RETURNING id", e.Name)
		if err != nil {
			return err
		}
		for _, name := range e.Modules {
			moduleID, ok := modules[name]
			if !ok {
				return fmt.Errorf("unknown module %q for %q", name, e.Name)
			}
			if _, err := tx.Exec(ctx,
				"INSERT INTO modules_for_equipment (equipment_id, module_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
				id, moduleID); err != nil {
				return err
			}
		}
		log.Printf("  - equipment %q (#%d), %d modules", e.Name, id, len(e.Modules))
	}
	return nil
}
