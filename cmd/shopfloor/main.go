package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	"shopfloor/internal/api"
	"shopfloor/internal/config"
	"shopfloor/internal/controller"
	"shopfloor/internal/logging"
	"shopfloor/internal/media"
	"shopfloor/internal/models"
	"shopfloor/internal/session"
)

const usage = `usage: shopfloor <command> [flags]

commands:
  login     -email X -password Y   authenticate and save the session
  logout                           drop the saved session
  jobs      [-status S] [-progress P] [-pages N]   browse the job board
  mine      [-status S] [-progress P]              jobs assigned to you
  show      <job-id>               full job record
  assign    <job-id>               claim a NEW job
  start     <job-id>               begin a PENDING job
  complete  <job-id> [-photo F]    finish a PROCESSING job
`

type app struct {
	cfg      config.Config
	log      *logrus.Logger
	sessions *session.Store
	client   *api.Client
}

// printNavigator mirrors the screen changes the mobile app would make.
type printNavigator struct{}

func (printNavigator) NavigateTo(screen string, params map[string]string) {
	fmt.Printf("-> %s (job %s)\n", screen, params["jobId"])
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.MustLoad()
	log := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt)
		<-ch
		cancel()
	}()

	sessions := session.NewStore(cfg.API.BaseURL, cfg.API.Timeout, log)
	a := &app{
		cfg:      cfg,
		log:      log,
		sessions: sessions,
		client:   api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, cfg.API.UploadTimeout, sessions, log),
	}

	cmd, args := os.Args[1], os.Args[2:]
	if cmd != "login" && cmd != "logout" {
		a.restoreSession()
	}

	var err error
	switch cmd {
	case "login":
		err = a.cmdLogin(ctx, args)
	case "logout":
		err = clearSavedSession()
	case "jobs":
		err = a.cmdJobs(ctx, args)
	case "mine":
		err = a.cmdMine(ctx, args)
	case "show":
		err = a.cmdShow(ctx, args)
	case "assign":
		err = a.cmdAction(ctx, args, "assign")
	case "start":
		err = a.cmdAction(ctx, args, "start")
	case "complete":
		err = a.cmdComplete(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (a *app) restoreSession() {
	saved, err := loadSavedSession()
	if err != nil {
		a.log.WithError(err).Debug("no saved session")
		return
	}
	a.sessions.SetToken(saved.Token, saved.User)
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "worker email")
	password := fs.String("password", "", "worker password")
	_ = fs.Parse(args)

	sess, err := a.sessions.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	if err := saveSession(sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	fmt.Printf("logged in as %s %s <%s>\n", sess.User.FirstName, sess.User.LastName, sess.User.Email)
	return nil
}

func listFlags(fs *flag.FlagSet) (*string, *string) {
	status := fs.String("status", "", "status filter (NEW, ACTIVE, PENDING)")
	progress := fs.String("progress", "ALL", "progress filter (NEW, PENDING, PROCESSING, DONE, ALL)")
	return status, progress
}

func (a *app) cmdJobs(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("jobs", flag.ExitOnError)
	status, progress := listFlags(fs)
	pages := fs.Int("pages", 1, "number of pages to fetch")
	_ = fs.Parse(args)

	list := controller.NewListController(a.client, controller.ModePaged, models.Filter{
		Status:   *status,
		Progress: models.ParseProgress(*progress),
	}, a.cfg.API.PageSize, a.log)

	list.Refresh(ctx)
	for i := 1; i < *pages; i++ {
		if !list.Snapshot().HasMore {
			break
		}
		list.LoadMore(ctx)
	}
	return printList(list.Snapshot())
}

func (a *app) cmdMine(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("mine", flag.ExitOnError)
	status, progress := listFlags(fs)
	_ = fs.Parse(args)

	list := controller.NewListController(a.client, controller.ModeAssigned, models.Filter{
		Status:   *status,
		Progress: models.ParseProgress(*progress),
	}, a.cfg.API.PageSize, a.log)

	list.Refresh(ctx)
	return printList(list.Snapshot())
}

func printList(snap controller.ListSnapshot) error {
	if snap.Err != nil {
		return snap.Err
	}
	if len(snap.Items) == 0 {
		fmt.Println("no jobs")
		return nil
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPROGRESS\tSTATUS\tPRODUCT\tQTY\tDUE")
	for _, j := range snap.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s %s\t%d\t%s\n",
			j.ID, j.Progress, j.Status,
			j.StockItem.Product.Kind, j.StockItem.Product.Attrs.Name,
			j.Qty, j.DueDate)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if snap.HasMore {
		fmt.Println("(more pages available)")
	}
	return nil
}

func (a *app) cmdShow(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: shopfloor show <job-id>")
	}
	detail := controller.NewDetailController(a.client, controller.NopNavigator{}, a.log)
	if err := detail.Load(ctx, args[0]); err != nil {
		return err
	}
	snap := detail.Snapshot()
	if snap.NotFound {
		return fmt.Errorf("job %s not found", args[0])
	}
	job := snap.Job

	fmt.Printf("job %s\n", job.ID)
	fmt.Printf("  progress:  %s\n", job.Progress)
	fmt.Printf("  status:    %s\n", job.Status)
	fmt.Printf("  qty:       %d\n", job.Qty)
	fmt.Printf("  due:       %s\n", job.DueDate)
	p := job.StockItem.Product
	fmt.Printf("  product:   %s %s (%s, %sx%s)\n", p.Kind, p.Attrs.Name, p.Attrs.Code, p.Attrs.Width, p.Attrs.Height)
	if job.RequiresPhoto() {
		fmt.Println("  completion requires a photo")
	}
	if q := job.Quotation; q != nil {
		fmt.Printf("  customer:  %s %s\n", q.CustomerName, q.CustomerContact)
		if q.Price != nil {
			fmt.Printf("  price:     %.2f\n", *q.Price)
		}
	}
	return nil
}

func (a *app) cmdAction(ctx context.Context, args []string, action string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: shopfloor %s <job-id>", action)
	}
	detail := controller.NewDetailController(a.client, printNavigator{}, a.log)
	if err := detail.Load(ctx, args[0]); err != nil {
		return err
	}
	switch action {
	case "assign":
		return detail.Assign(ctx)
	case "start":
		return detail.Start(ctx)
	}
	return fmt.Errorf("unknown action %s", action)
}

func (a *app) cmdComplete(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: shopfloor complete <job-id> [-photo file]")
	}
	id := args[0]
	fs := flag.NewFlagSet("complete", flag.ExitOnError)
	photoPath := fs.String("photo", "", "completion photo file")
	_ = fs.Parse(args[1:])

	detail := controller.NewDetailController(a.client, printNavigator{}, a.log)
	if err := detail.Load(ctx, id); err != nil {
		return err
	}

	if *photoPath != "" {
		photo, err := media.FromFile(*photoPath, a.cfg.Photo.MaxBytes)
		if err != nil {
			return fmt.Errorf("read photo: %w", err)
		}
		photo, err = media.Downscale(photo, a.cfg.Photo.MaxEdge, a.cfg.Photo.JPEGQuality)
		if err != nil {
			return fmt.Errorf("downscale photo: %w", err)
		}
		detail.AttachPhoto(photo)
	}

	return detail.Complete(ctx)
}
