package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ecommerce-datagen/internal/config"
	"ecommerce-datagen/internal/fakedata"
	"ecommerce-datagen/internal/models"
	"ecommerce-datagen/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// ErrMissingParents is returned when a stage is asked for rows but one of the
// parent id lists it draws references from is empty.
var ErrMissingParents = errors.New("missing parent rows")

// Progress cadence per stage, in rows.
const (
	productProgressEvery  = 50
	customerProgressEvery = 500
	orderProgressEvery    = 500
	reviewProgressEvery   = 300
	ticketProgressEvery   = 100
)

var categoryNames = []string{
	"Electronics", "Clothing", "Home & Garden", "Sports", "Books",
	"Toys", "Health & Beauty", "Automotive", "Food & Grocery", "Pet Supplies",
}

var (
	productAdjectives = []string{"Premium", "Ultra", "Pro", "Classic", "Smart", "Eco", "Deluxe"}
	productNouns      = []string{"Widget", "Gadget", "Device", "Tool", "Kit", "Set", "System"}
)

// RunStatus is the outcome of a generation run
type RunStatus string

const (
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// StageResult records what one pipeline stage did
type StageResult struct {
	Stage           string        `json:"stage"`
	Rows            int64         `json:"rows"`
	Duration        time.Duration `json:"-"`
	DurationSeconds float64       `json:"durationSeconds"`
}

// RunSummary describes a finished generation run. Rows holds the rows
// committed per table and is empty when the run failed.
type RunSummary struct {
	RunID      uuid.UUID        `json:"runId"`
	Seed       uint64           `json:"seed"`
	Status     RunStatus        `json:"status"`
	Error      string           `json:"error,omitempty"`
	StartedAt  time.Time        `json:"startedAt"`
	FinishedAt time.Time        `json:"finishedAt"`
	Rows       map[string]int64 `json:"rows"`
	Stages     []StageResult    `json:"stages"`
}

// TotalRows sums the committed rows over all tables.
func (s *RunSummary) TotalRows() int64 {
	var total int64
	for _, n := range s.Rows {
		total += n
	}
	return total
}

// Duration returns the wall time of the run.
func (s *RunSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// Generator fills the schema with synthetic rows. A Generator is bound to one
// fake-data state and is not safe for concurrent use.
type Generator struct {
	repo   repository.DatagenRepository
	fake   *fakedata.State
	logger *logrus.Entry
	now    func() time.Time
}

// NewGenerator creates a generator writing through repo.
func NewGenerator(repo repository.DatagenRepository, fake *fakedata.State, logger *logrus.Entry) *Generator {
	return &Generator{
		repo:   repo,
		fake:   fake,
		logger: logger,
		now:    time.Now,
	}
}

// withRepo returns a copy of the generator writing through repo.
func (g *Generator) withRepo(repo repository.DatagenRepository) *Generator {
	clone := *g
	clone.repo = repo
	return &clone
}

// Run executes every stage in dependency order inside one transaction. Any
// stage error rolls the whole run back. The returned summary is never nil.
func (g *Generator) Run(ctx context.Context, counts config.Counts) (*RunSummary, error) {
	summary := &RunSummary{
		RunID:     uuid.New(),
		Seed:      g.fake.Seed(),
		StartedAt: g.now(),
		Rows:      map[string]int64{},
	}
	log := g.logger.WithFields(logrus.Fields{
		"run_id": summary.RunID.String(),
		"seed":   summary.Seed,
	})

	if err := counts.Validate(); err != nil {
		return g.fail(log, summary, err)
	}

	log.Info(strings.Repeat("=", 60))
	log.Info("E-COMMERCE DATABASE - DATA GENERATION")
	log.Info(strings.Repeat("=", 60))

	rows := map[string]int64{}
	err := g.repo.WithTransaction(ctx, func(txRepo repository.DatagenRepository) error {
		gen := g.withRepo(txRepo)
		gen.logger = log
		p := &pipeline{gen: gen, summary: summary, rows: rows}
		return p.run(ctx, counts)
	})
	if err != nil {
		return g.fail(log, summary, err)
	}

	summary.Rows = rows
	summary.Status = RunStatusCompleted
	summary.FinishedAt = g.now()

	log.WithFields(logrus.Fields{
		"rows":     summary.TotalRows(),
		"duration": summary.Duration().String(),
	}).Info("[SUCCESS] DATA GENERATION COMPLETE!")
	return summary, nil
}

func (g *Generator) fail(log *logrus.Entry, summary *RunSummary, err error) (*RunSummary, error) {
	summary.Status = RunStatusFailed
	summary.Error = err.Error()
	summary.FinishedAt = g.now()
	log.WithError(err).Error("[ERROR] data generation failed, all changes rolled back")
	return summary, err
}

// pipeline threads the ids of one run from stage to stage.
type pipeline struct {
	gen     *Generator
	summary *RunSummary
	rows    map[string]int64
}

func (p *pipeline) stage(name string, fn func() (int64, error)) error {
	started := time.Now()
	n, err := fn()
	elapsed := time.Since(started)
	p.summary.Stages = append(p.summary.Stages, StageResult{
		Stage:           name,
		Rows:            n,
		Duration:        elapsed,
		DurationSeconds: elapsed.Seconds(),
	})
	if err != nil {
		return fmt.Errorf("%s stage: %w", name, err)
	}
	return nil
}

func (p *pipeline) run(ctx context.Context, counts config.Counts) error {
	g := p.gen
	var categoryIDs, supplierIDs, warehouseIDs, productIDs, customerIDs []uint

	steps := []struct {
		name string
		fn   func() (int64, error)
	}{
		{"categories", func() (int64, error) {
			ids, err := g.GenerateCategories(ctx)
			categoryIDs = ids
			p.rows["categories"] = int64(len(ids))
			return int64(len(ids)), err
		}},
		{"suppliers", func() (int64, error) {
			ids, err := g.GenerateSuppliers(ctx, counts.Suppliers)
			supplierIDs = ids
			p.rows["suppliers"] = int64(len(ids))
			return int64(len(ids)), err
		}},
		{"warehouses", func() (int64, error) {
			ids, err := g.GenerateWarehouses(ctx, counts.Warehouses)
			warehouseIDs = ids
			p.rows["warehouses"] = int64(len(ids))
			return int64(len(ids)), err
		}},
		{"products", func() (int64, error) {
			ids, err := g.GenerateProducts(ctx, categoryIDs, supplierIDs, counts.Products)
			productIDs = ids
			p.rows["products"] = int64(len(ids))
			return int64(len(ids)), err
		}},
		{"inventory", func() (int64, error) {
			n, err := g.GenerateInventory(ctx, productIDs, warehouseIDs)
			p.rows["inventory"] = n
			return n, err
		}},
		{"customers", func() (int64, error) {
			ids, err := g.GenerateCustomers(ctx, counts.Customers)
			customerIDs = ids
			p.rows["customers"] = int64(len(ids))
			return int64(len(ids)), err
		}},
		{"orders", func() (int64, error) {
			orders, items, err := g.GenerateOrders(ctx, customerIDs, productIDs, counts.Orders)
			p.rows["orders"] = orders
			p.rows["order_items"] = items
			return orders + items, err
		}},
		{"reviews", func() (int64, error) {
			n, err := g.GenerateReviews(ctx, customerIDs, productIDs, counts.Reviews)
			p.rows["reviews"] = n
			return n, err
		}},
		{"tickets", func() (int64, error) {
			n, err := g.GenerateTickets(ctx, customerIDs, counts.Tickets)
			p.rows["customer_support_tickets"] = n
			return n, err
		}},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.stage(step.name, step.fn); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) stageLogger(stage string) *logrus.Entry {
	return g.logger.WithField("stage", stage)
}

// insertInChunks inserts rows in chunks of every and logs progress once
// each full chunk has reached the database.
func insertInChunks[T any](ctx context.Context, log *logrus.Entry, noun string, rows []T, every int, insert func(context.Context, []T) ([]uint, error)) ([]uint, error) {
	ids := make([]uint, 0, len(rows))
	for start := 0; start < len(rows); start += every {
		end := min(start+every, len(rows))
		chunk, err := insert(ctx, rows[start:end])
		if err != nil {
			return nil, err
		}
		ids = append(ids, chunk...)
		if end%every == 0 {
			log.Infof("  Progress: %d/%d %s...", end, len(rows), noun)
		}
	}
	return ids, nil
}

func requireParents(count int, parents ...[]uint) error {
	if count <= 0 {
		return nil
	}
	for _, ids := range parents {
		if len(ids) == 0 {
			return ErrMissingParents
		}
	}
	return nil
}

// GenerateCategories inserts the fixed category list.
func (g *Generator) GenerateCategories(ctx context.Context) ([]uint, error) {
	log := g.stageLogger("categories")
	log.Info("Creating categories...")

	categories := make([]models.Category, len(categoryNames))
	for i, name := range categoryNames {
		categories[i] = models.Category{
			CategoryName: name,
			Description:  g.fake.Sentence(g.fake.IntRange(6, 10)),
		}
	}

	ids, err := g.repo.CreateCategories(ctx, categories)
	if err != nil {
		return nil, err
	}
	log.Infof("[DONE] %d categories created", len(ids))
	return ids, nil
}

// GenerateSuppliers inserts count suppliers rated between 3.5 and 5.0.
func (g *Generator) GenerateSuppliers(ctx context.Context, count int) ([]uint, error) {
	log := g.stageLogger("suppliers")
	log.Infof("Creating %d suppliers...", count)

	suppliers := make([]models.Supplier, count)
	for i := range suppliers {
		company := g.fake.Company()
		suppliers[i] = models.Supplier{
			SupplierName: company,
			Country:      g.fake.Country(),
			ContactEmail: g.fake.CompanyEmail(company),
			Rating:       g.fake.Amount(3.5, 5.0),
			Active:       true,
		}
	}

	ids, err := g.repo.CreateSuppliers(ctx, suppliers)
	if err != nil {
		return nil, err
	}
	log.Infof("[DONE] %d suppliers created", len(ids))
	return ids, nil
}

// GenerateWarehouses inserts count warehouses named after a city.
func (g *Generator) GenerateWarehouses(ctx context.Context, count int) ([]uint, error) {
	log := g.stageLogger("warehouses")
	log.Infof("Creating %d warehouses...", count)

	warehouses := make([]models.Warehouse, count)
	for i := range warehouses {
		warehouses[i] = models.Warehouse{
			WarehouseName: fmt.Sprintf("%s Distribution Center", g.fake.City()),
			Country:       g.fake.Country(),
			City:          g.fake.City(),
			Active:        true,
		}
	}

	ids, err := g.repo.CreateWarehouses(ctx, warehouses)
	if err != nil {
		return nil, err
	}
	log.Infof("[DONE] %d warehouses created", len(ids))
	return ids, nil
}

// GenerateProducts inserts count products, each priced at 1.5x to 3x its cost.
func (g *Generator) GenerateProducts(ctx context.Context, categoryIDs, supplierIDs []uint, count int) ([]uint, error) {
	if err := requireParents(count, categoryIDs, supplierIDs); err != nil {
		return nil, fmt.Errorf("products need categories and suppliers: %w", err)
	}
	log := g.stageLogger("products")
	log.Infof("Creating %d products...", count)

	products := make([]models.Product, count)
	for i := range products {
		cost := g.fake.Amount(10, 300)
		markup := decimalFromFloat(g.fake.FloatRange(1.5, 3.0))
		products[i] = models.Product{
			ProductName: fmt.Sprintf("%s %s %d", fakedata.Pick(g.fake, productAdjectives), fakedata.Pick(g.fake, productNouns), i+1),
			CategoryID:  fakedata.Pick(g.fake, categoryIDs),
			SupplierID:  fakedata.Pick(g.fake, supplierIDs),
			Cost:        cost,
			Price:       cost.Mul(markup).Round(2),
			SKU:         g.fake.SKU(),
			Description: g.fake.Sentence(g.fake.IntRange(6, 12)),
			Active:      true,
		}
	}

	ids, err := insertInChunks(ctx, log, "products", products, productProgressEvery, g.repo.CreateProducts)
	if err != nil {
		return nil, err
	}
	log.Infof("[DONE] %d products created", len(ids))
	return ids, nil
}

// GenerateInventory stocks every product in one or two distinct warehouses.
// It returns the number of inventory rows inserted.
func (g *Generator) GenerateInventory(ctx context.Context, productIDs, warehouseIDs []uint) (int64, error) {
	log := g.stageLogger("inventory")
	log.Info("Creating inventory records...")

	now := g.clock()
	rows := make([]models.Inventory, 0, len(productIDs)*2)
	for _, productID := range productIDs {
		for _, warehouseID := range fakedata.Sample(g.fake, warehouseIDs, g.fake.IntRange(1, 2)) {
			rows = append(rows, models.Inventory{
				ProductID:         productID,
				WarehouseID:       warehouseID,
				StockQuantity:     g.fake.IntRange(0, 500),
				ReorderLevel:      g.fake.IntRange(10, 50),
				LastRestockedDate: dateOf(g.fake.Between(now.AddDate(0, -6, 0), now)),
			})
		}
	}

	n, err := g.repo.CreateInventory(ctx, rows)
	if err != nil {
		return 0, err
	}
	log.Infof("[DONE] %d inventory records created", n)
	return n, nil
}

// GenerateCustomers inserts count customers with unique emails.
func (g *Generator) GenerateCustomers(ctx context.Context, count int) ([]uint, error) {
	log := g.stageLogger("customers")
	log.Infof("Creating %d customers...", count)

	now := g.clock()
	customers := make([]models.Customer, count)
	for i := range customers {
		first, last := g.fake.FirstName(), g.fake.LastName()
		customers[i] = models.Customer{
			FirstName:        first,
			LastName:         last,
			Email:            g.fake.UniqueEmail(first, last),
			Phone:            g.fake.Phone(),
			Country:          g.fake.Country(),
			City:             g.fake.City(),
			RegistrationDate: dateOf(g.fake.Between(now.AddDate(-3, 0, 0), now)),
			Segment:          models.CustomerSegmentNew,
		}
	}

	ids, err := insertInChunks(ctx, log, "customers", customers, customerProgressEvery, g.repo.CreateCustomers)
	if err != nil {
		return nil, err
	}
	log.Infof("[DONE] %d customers created", len(ids))
	return ids, nil
}

// GenerateReviews inserts count reviews of random products by random
// customers. The verified flag is not derived from order history.
func (g *Generator) GenerateReviews(ctx context.Context, customerIDs, productIDs []uint, count int) (int64, error) {
	if err := requireParents(count, customerIDs, productIDs); err != nil {
		return 0, fmt.Errorf("reviews need customers and products: %w", err)
	}
	log := g.stageLogger("reviews")
	log.Infof("Creating %d reviews...", count)

	now := g.clock()
	reviews := make([]models.Review, count)
	for i := range reviews {
		review := models.Review{
			ProductID:        fakedata.Pick(g.fake, productIDs),
			CustomerID:       fakedata.Pick(g.fake, customerIDs),
			Rating:           g.fake.IntRange(1, 5),
			ReviewTitle:      g.fake.Sentence(5),
			ReviewDate:       g.between(now.AddDate(-1, 0, 0), now),
			VerifiedPurchase: g.fake.Bool(),
		}
		if g.fake.Chance(0.6) {
			text := g.fake.Paragraph()
			review.ReviewText = &text
		}
		reviews[i] = review
	}

	ids, err := insertInChunks(ctx, log, "reviews", reviews, reviewProgressEvery, g.repo.CreateReviews)
	if err != nil {
		return 0, err
	}
	log.Infof("[DONE] %d reviews created", len(ids))
	return int64(len(ids)), nil
}

var (
	ticketIssueTypes = []models.TicketIssueType{models.TicketIssueProduct, models.TicketIssueShipping, models.TicketIssuePayment, models.TicketIssueReturn}
	ticketPriorities = []models.TicketPriority{models.TicketPriorityLow, models.TicketPriorityMedium, models.TicketPriorityHigh}
	ticketStatuses   = []models.TicketStatus{models.TicketStatusOpen, models.TicketStatusInProgress, models.TicketStatusResolved, models.TicketStatusClosed}
)

// GenerateTickets inserts count support tickets. Resolved and closed tickets
// carry a resolved date 1 to 10 days after creation.
func (g *Generator) GenerateTickets(ctx context.Context, customerIDs []uint, count int) (int64, error) {
	if err := requireParents(count, customerIDs); err != nil {
		return 0, fmt.Errorf("tickets need customers: %w", err)
	}
	log := g.stageLogger("tickets")
	log.Infof("Creating %d support tickets...", count)

	now := g.clock()
	tickets := make([]models.SupportTicket, count)
	for i := range tickets {
		created := g.between(now.AddDate(0, -6, 0), now)
		status := fakedata.Pick(g.fake, ticketStatuses)
		ticket := models.SupportTicket{
			CustomerID:  fakedata.Pick(g.fake, customerIDs),
			IssueType:   fakedata.Pick(g.fake, ticketIssueTypes),
			Priority:    fakedata.Pick(g.fake, ticketPriorities),
			Status:      status,
			Description: g.fake.Paragraph(),
			CreatedDate: created,
		}
		if status.IsResolved() {
			resolved := created.AddDate(0, 0, g.fake.IntRange(1, 10))
			ticket.ResolvedDate = &resolved
		}
		tickets[i] = ticket
	}

	ids, err := insertInChunks(ctx, log, "tickets", tickets, ticketProgressEvery, g.repo.CreateTickets)
	if err != nil {
		return 0, err
	}
	log.Infof("[DONE] %d tickets created", len(ids))
	return int64(len(ids)), nil
}

// clock returns the generator's current time in UTC at second precision.
func (g *Generator) clock() time.Time {
	return g.now().UTC().Truncate(time.Second)
}

// between returns a random instant in [start, end] at second precision.
func (g *Generator) between(start, end time.Time) time.Time {
	return g.fake.Between(start, end).Truncate(time.Second)
}

func dateOf(t time.Time) datatypes.Date {
	return datatypes.Date(t)
}

func decimalFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
