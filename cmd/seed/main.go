package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"salesinsights/database"
	"salesinsights/internal/config"
	exportapp "salesinsights/internal/export/application"
	exportdomain "salesinsights/internal/export/domain"
	exportinfra "salesinsights/internal/export/infrastructure"
	genapp "salesinsights/internal/generator/application"
	sharedinfra "salesinsights/internal/shared/infrastructure"
	warehouse "salesinsights/internal/warehouse/domain"
	warehouseinfra "salesinsights/internal/warehouse/infrastructure"
)

var seedFlags struct {
	years     int
	seed      uint64
	batchSize int
	materials int
	reset     bool
	mode      string
	workers   int
	store     string
	outDir    string
	csv       bool
	parquet   bool
	s3Bucket  string
	s3Region  string
	s3Prefix  string
}

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Génère l'entrepôt de ventes synthétique",
	Long: `Construit les dimensions (dates, clients, usines, articles), génère les faits
de façon déterministe à partir d'un seed et les charge par lots dans PostgreSQL.
Les mêmes lots peuvent être exportés en CSV / Parquet puis publiés sur S3.`,
	RunE:          runSeed,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Applique le schéma en étoile sans générer de données",
	RunE:  runSchema,
}

func init() {
	defaults := genapp.DefaultConfig()

	f := rootCmd.Flags()
	f.IntVarP(&seedFlags.years, "years", "y", defaults.YearsBack, "Nombre d'années complètes avant l'année en cours")
	f.Uint64VarP(&seedFlags.seed, "seed", "s", defaults.Seed, "Seed du générateur")
	f.IntVar(&seedFlags.batchSize, "batch-size", defaults.BatchSize, "Nombre de lignes par lot")
	f.IntVar(&seedFlags.materials, "materials", defaults.MaterialCount, "Nombre d'articles")
	f.BoolVar(&seedFlags.reset, "reset", false, "Vide l'entrepôt avant de le remplir")
	f.StringVar(&seedFlags.mode, "mode", string(genapp.ModeSequential), "Mode de génération (sequential | per-day)")
	f.IntVar(&seedFlags.workers, "workers", defaults.Workers, "Goroutines de génération en mode per-day")
	f.StringVar(&seedFlags.store, "store", config.StorePostgres, "Destination des faits (postgres | memory)")
	f.StringVar(&seedFlags.outDir, "out", "exports", "Répertoire des exports")
	f.BoolVar(&seedFlags.csv, "csv", false, "Exporte les faits en CSV")
	f.BoolVar(&seedFlags.parquet, "parquet", false, "Exporte les faits en Parquet")
	f.StringVar(&seedFlags.s3Bucket, "s3-bucket", "", "Publie les exports dans ce bucket S3")
	f.StringVar(&seedFlags.s3Region, "s3-region", "", "Région AWS du bucket")
	f.StringVar(&seedFlags.s3Prefix, "s3-prefix", "sales", "Préfixe des clés S3")

	rootCmd.AddCommand(schemaCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatal("❌ ", err)
	}
}

// applyEnv complète les flags non fournis avec l'environnement (.env)
func applyEnv(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if !f.Changed("years") {
		seedFlags.years = cfg.Seed.Years
	}
	if !f.Changed("seed") {
		seedFlags.seed = cfg.Seed.Seed
	}
	if !f.Changed("batch-size") {
		seedFlags.batchSize = cfg.Seed.BatchSize
	}
	if !f.Changed("materials") {
		seedFlags.materials = cfg.Seed.Materials
	}
	if !f.Changed("s3-bucket") {
		seedFlags.s3Bucket = cfg.Export.S3Bucket
	}
	if !f.Changed("s3-region") {
		seedFlags.s3Region = cfg.Export.S3Region
	}
}

func runSchema(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := database.Open(cmd.Context(), cfg.DB.Driver, cfg.DB.ConnString())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.ApplySchema(cmd.Context(), db); err != nil {
		return err
	}
	fmt.Println("✅ Schéma appliqué")
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyEnv(cmd, cfg)
	logger := sharedinfra.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	genCfg := genapp.DefaultConfig()
	genCfg.YearsBack = seedFlags.years
	genCfg.Seed = seedFlags.seed
	genCfg.BatchSize = seedFlags.batchSize
	genCfg.MaterialCount = seedFlags.materials
	genCfg.Reset = seedFlags.reset
	genCfg.Mode = genapp.Mode(seedFlags.mode)
	genCfg.Workers = seedFlags.workers
	if err := genCfg.Validate(); err != nil {
		return err
	}

	// Destination
	var writer genapp.WarehouseWriter
	switch seedFlags.store {
	case config.StorePostgres:
		db, err := database.Open(ctx, cfg.DB.Driver, cfg.DB.ConnString())
		if err != nil {
			return fmt.Errorf("connexion DB: %w", err)
		}
		defer func() {
			fmt.Println("🔍 Analyse des tables...")
			if err := database.Analyze(context.Background(), db); err != nil {
				fmt.Println("⚠️ Attention: échec de l'analyse:", err)
			}
			db.Close()
		}()
		fmt.Printf("✅ Connexion PostgreSQL établie (driver %s)\n", cfg.DB.Driver)
		writer = warehouseinfra.NewPostgresWriter(db, cfg.DB.Driver)
	case config.StoreMemory:
		writer = warehouseinfra.NewMemoryStore()
	default:
		return fmt.Errorf("%w: store %q", config.ErrInvalidConfig, seedFlags.store)
	}

	// Exports
	var formats []exportdomain.ExportFormat
	if seedFlags.csv {
		formats = append(formats, exportdomain.ExportFormatCSV)
	}
	if seedFlags.parquet {
		formats = append(formats, exportdomain.ExportFormatParquet)
	}

	var uploader exportapp.Uploader
	if seedFlags.s3Bucket != "" && len(formats) > 0 {
		u, err := exportinfra.NewS3Uploader(ctx, seedFlags.s3Region, seedFlags.s3Bucket)
		if err != nil {
			return err
		}
		uploader = u
	}

	exports := exportapp.NewExportService(exportapp.Options{
		Dir:     seedFlags.outDir,
		Formats: formats,
		Prefix:  seedFlags.s3Prefix,
	}, uploader, logger)

	sinks, err := exports.Sinks()
	if err != nil {
		return err
	}

	seeder := genapp.NewSeeder(writer, logger, sinks...)
	seeder.OnBatch = func(rec warehouse.BatchRecord) {
		fmt.Printf("   📦 Lot %d: %d lignes (faits %d → %d)\n", rec.Seq, rec.RowCount, rec.FirstFactID, rec.LastFactID)
	}

	fmt.Println("🌱 Démarrage de la génération de l'entrepôt...")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	summary, err := seeder.Run(ctx, genCfg)
	if err != nil {
		return fmt.Errorf("erreur lors du seed: %w", err)
	}

	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("✅ Seed terminé en %v (run %s)\n", summary.Duration, summary.RunID)
	fmt.Printf("   📅 %d jours, %d clients, %d usines, %d articles\n",
		summary.Days, summary.Customers, summary.Plants, summary.Materials)
	fmt.Printf("   🧾 %d faits en %d lots (seed %d, mode %s)\n",
		summary.Facts, summary.Batches, summary.Seed, summary.Mode)
	fmt.Printf("   🕒 Données au %s\n", summary.DataAsOf.Format("2006-01-02"))

	artifacts, err := exports.Finish(ctx, summary.RunID.String())
	for _, a := range artifacts {
		fmt.Printf("   💾 %s: %s (%d lignes)\n", a.Format, filepath.Clean(a.Path), a.Rows)
		if a.Key != "" {
			fmt.Printf("   ☁️  s3://%s/%s\n", seedFlags.s3Bucket, a.Key)
		}
	}
	if err != nil {
		return fmt.Errorf("publication des exports: %w", err)
	}

	fmt.Println()
	fmt.Println("Vous pouvez maintenant démarrer l'API avec:")
	fmt.Println("  go run main.go")
	fmt.Println()
	fmt.Println("Et tester les endpoints:")
	fmt.Println("  http://localhost:8080/api/metrics/overview")
	fmt.Println("  http://localhost:8080/api/metrics/yoy?customer=Atlas%20Retail%20Group")
	return nil
}
