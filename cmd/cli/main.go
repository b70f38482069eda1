package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/config"
	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/csvimport"
	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/models"
	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/sitemap"
	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/store"
	"github.com/dreamcrest1/dreamcrest-refresh-sub000/migrations"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

const usage = "expected one of: add-user, promote, import-csv, sitemap, seed-content"

func main() {
	addUserCmd := flag.NewFlagSet("add-user", flag.ExitOnError)
	email := addUserCmd.String("email", "", "Email for the new user")
	password := addUserCmd.String("password", "", "Password for the new user")
	admin := addUserCmd.Bool("admin", false, "Give the user the admin role")

	promoteCmd := flag.NewFlagSet("promote", flag.ExitOnError)
	promoteEmail := promoteCmd.String("email", "", "Email of the user to make admin")

	importCmd := flag.NewFlagSet("import-csv", flag.ExitOnError)
	importFile := importCmd.String("file", "", "Product CSV export")

	sitemapCmd := flag.NewFlagSet("sitemap", flag.ExitOnError)
	sitemapCSV := sitemapCmd.String("csv", "", "Product CSV export to read product ids from")
	sitemapBase := sitemapCmd.String("base-url", "", "Public site URL (defaults to BASE_URL)")
	sitemapOut := sitemapCmd.String("out", "sitemap.xml", "Output file, - for stdout")

	seedCmd := flag.NewFlagSet("seed-content", flag.ExitOnError)
	seedFile := seedCmd.String("file", "", "YAML file mapping content keys to values")

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	ctx := context.Background()

	switch os.Args[1] {
	case "add-user":
		addUserCmd.Parse(os.Args[2:])
		if *email == "" || *password == "" {
			fmt.Println("email and password are required")
			addUserCmd.PrintDefaults()
			os.Exit(1)
		}
		role := models.RoleUser
		if *admin {
			role = models.RoleAdmin
		}
		createUser(ctx, openStore(ctx, cfg), *email, *password, role)
	case "promote":
		promoteCmd.Parse(os.Args[2:])
		if *promoteEmail == "" {
			fmt.Println("email is required")
			promoteCmd.PrintDefaults()
			os.Exit(1)
		}
		if err := openStore(ctx, cfg).SetUserRole(ctx, normalizeEmail(*promoteEmail), models.RoleAdmin); err != nil {
			log.Fatalf("Failed to promote user: %v", err)
		}
		fmt.Printf("User '%s' is now an admin.\n", *promoteEmail)
	case "import-csv":
		importCmd.Parse(os.Args[2:])
		if *importFile == "" {
			fmt.Println("file is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		importProducts(ctx, openStore(ctx, cfg), *importFile)
	case "sitemap":
		sitemapCmd.Parse(os.Args[2:])
		if *sitemapCSV == "" {
			fmt.Println("csv is required")
			sitemapCmd.PrintDefaults()
			os.Exit(1)
		}
		base := *sitemapBase
		if base == "" {
			base = cfg.BaseURL
		}
		writeSitemap(*sitemapCSV, strings.TrimRight(base, "/"), *sitemapOut)
	case "seed-content":
		seedCmd.Parse(os.Args[2:])
		if *seedFile == "" {
			fmt.Println("file is required")
			seedCmd.PrintDefaults()
			os.Exit(1)
		}
		seedContent(ctx, openStore(ctx, cfg), *seedFile)
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

// openStore opens the configured database and makes sure the schema exists,
// so the CLI can run before the server ever has.
func openStore(ctx context.Context, cfg *config.Config) *store.Store {
	db, err := store.NewStore(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := db.Migrate(ctx, migrations.FS); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func createUser(ctx context.Context, db *store.Store, email, password, role string) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	if err := db.CreateUser(ctx, normalizeEmail(email), string(hashedPassword), role); err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}
	fmt.Printf("User '%s' created with role %s.\n", email, role)
}

func importProducts(ctx context.Context, db *store.Store, path string) {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("Failed to open CSV: %v", err)
	}
	defer f.Close()

	res, err := csvimport.Import(f)
	if err != nil {
		log.Fatalf("Failed to parse CSV: %v", err)
	}
	for _, problem := range res.Problems {
		fmt.Println("skipped", problem)
	}

	created, updated := 0, 0
	for _, item := range res.Products {
		p := item.Product
		isNew, err := db.UpsertProductByLegacyID(ctx, &p)
		if err != nil {
			log.Fatalf("line %d: failed to save %q: %v", item.Line, p.Name, err)
		}
		if isNew {
			created++
		} else {
			updated++
		}
	}
	fmt.Printf("Imported %d new and %d updated products, %d rows skipped.\n", created, updated, res.Skipped)
}

func writeSitemap(csvPath, baseURL, out string) {
	f, err := os.Open(csvPath)
	if err != nil {
		log.Fatalf("Failed to open CSV: %v", err)
	}
	defer f.Close()

	doc, err := sitemapFromCSV(f, baseURL)
	if err != nil {
		log.Fatalf("Failed to build sitemap: %v", err)
	}
	if out == "-" {
		os.Stdout.Write(doc)
		return
	}
	if err := os.WriteFile(out, doc, 0o644); err != nil {
		log.Fatalf("Failed to write sitemap: %v", err)
	}
	fmt.Printf("Wrote %s.\n", out)
}

// sitemapFromCSV builds the sitemap for the static pages and every
// published product in the export.
func sitemapFromCSV(r io.Reader, baseURL string) ([]byte, error) {
	res, err := csvimport.Import(r)
	if err != nil {
		return nil, err
	}
	var products []models.Product
	for _, item := range res.Products {
		if item.Product.Published {
			products = append(products, item.Product)
		}
	}
	entries := append([]sitemap.Entry{}, sitemap.StaticRoutes...)
	entries = append(entries, sitemap.ForProducts(products)...)
	return sitemap.Build(baseURL, entries)
}

func seedContent(ctx context.Context, db *store.Store, path string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read seed file: %v", err)
	}
	blobs, err := contentFromYAML(raw)
	if err != nil {
		log.Fatalf("Failed to parse seed file: %v", err)
	}

	keys := make([]string, 0, len(blobs))
	for key := range blobs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := db.UpsertContent(ctx, key, blobs[key]); err != nil {
			log.Fatalf("Failed to save %s: %v", key, err)
		}
		fmt.Println("seeded", key)
	}
}

// contentFromYAML reads a top-level mapping of content key to value and
// returns each value encoded as JSON.
func contentFromYAML(raw []byte) (map[string]string, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	blobs := make(map[string]string, len(doc))
	for key, value := range doc {
		b, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		blobs[key] = string(b)
	}
	return blobs, nil
}
