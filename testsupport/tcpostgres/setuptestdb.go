//nolint:errcheck // testsetup
package tcpostgres

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/f1stint/f1-tiredata-manager-go/pkg/db/migrate"
	database "github.com/f1stint/f1-tiredata-manager-go/pkg/db/postgres"
)

// SetupTestDb provides a pg connection pool to a migrated throwaway database.
func SetupTestDb() *pgxpool.Pool {
	ctx := context.Background()
	port, err := nat.NewPort("tcp", "5432")
	if err != nil {
		log.Fatal(err)
	}
	container, err := SetupPostgres(ctx,
		WithPort(port.Port()),
		WithInitialDatabase("postgres", "password", "postgres"),
		WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
		WithName("f1-tiredata-manager-test"),
	)
	if err != nil {
		log.Fatal(err)
	}
	containerPort, _ := container.MappedPort(ctx, port)
	host, _ := container.Host(ctx)
	dbURL := fmt.Sprintf("postgresql://postgres:password@%s:%s/postgres",
		host, containerPort.Port())

	return setupWithURL(dbURL)
}

// SetupExternalTestDb connects to the database named by TESTDB_URL instead of
// starting a container.
func SetupExternalTestDb() *pgxpool.Pool {
	return setupWithURL(os.Getenv("TESTDB_URL"))
}

func setupWithURL(dbURL string) *pgxpool.Pool {
	if err := migrate.MigrateDb(dbURL); err != nil {
		log.Fatal(err)
	}
	pool, err := database.InitWithURL(dbURL)
	if err != nil {
		log.Fatal(err)
	}
	return pool
}

func ClearStintMetricsTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from stint_metrics")
}

func ClearPitStopTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from pit_stops")
}

func ClearWeatherTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from weather_conditions")
}

func ClearLapTimeTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from lap_times")
}

func ClearDriverTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from drivers")
}

func ClearTeamTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from teams")
}

func ClearRaceTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from races")
}

func ClearCircuitTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from circuits")
}

func ClearAllTables(pool *pgxpool.Pool) {
	ClearStintMetricsTable(pool)
	ClearPitStopTable(pool)
	ClearWeatherTable(pool)
	ClearLapTimeTable(pool)
	ClearDriverTable(pool)
	ClearTeamTable(pool)
	ClearRaceTable(pool)
	ClearCircuitTable(pool)
}
