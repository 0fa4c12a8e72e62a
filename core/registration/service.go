package registration

import (
	"context"
	"fmt"
	"io"
	"net/mail"
	"regexp"
	"time"

	"github.com/pkg/errors"

	"github.com/rawadhq/rawad/core"
)

var (
	NowFunc = time.Now // mockable

	cvKeyPrefix     = "cv_uploads"
	whitespaceRegex = regexp.MustCompile(`\s+`)
	unsafeCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_.]`)

	msgUploadFailed  = "فشل في رفع ملف السيرة الذاتية. يرجى المحاولة مرة أخرى."
	msgPersistFailed = "فشل إرسال البيانات. يرجى المحاولة مرة أخرى."
	msgUnexpected    = "يرجى المحاولة مرة أخرى لاحقًا أو التواصل معنا مباشرة."
)

// CVObjectKey derives the destination key for a CV upload. The millisecond
// timestamp makes it unique per submission attempt, so a retry never silently
// overwrites a previously stored object.
func CVObjectKey(filename string, now time.Time) string {
	name := whitespaceRegex.ReplaceAllString(filename, "_")
	name = unsafeCharRegex.ReplaceAllString(name, "")
	return fmt.Sprintf("%s/%d_%s", cvKeyPrefix, now.UnixMilli(), name)
}

// Service orchestrates registration submissions and serves the admin read side.
type Service struct {
	repo       Repository
	files      core.FileStorage
	mailSvc    core.EmailService
	logger     core.Logger
	adminEmail mail.Address
}

func NewService(
	repo Repository,
	files core.FileStorage,
	mailSvc core.EmailService,
	logger core.Logger,
	adminEmail mail.Address,
) *Service {
	return &Service{
		repo:       repo,
		files:      files,
		mailSvc:    mailSvc,
		logger:     logger,
		adminEmail: adminEmail,
	}
}

// Submit runs one submission attempt through the pipeline:
//
//	Validating -> (Rejected | Uploading -> Persisting -> Succeeded) | Failed
//
// The returned channel is finite: zero or more non-terminal events followed by
// exactly one terminal event, after which it is closed. The caller must drain it.
// The draft is never mutated beyond trimming; on Rejected or Failed the caller
// keeps the draft for correction and resubmission. Unexpected errors are
// normalized to a generic Failed event and never escape.
func (svc *Service) Submit(ctx context.Context, draft Draft) <-chan Event {
	events := make(chan Event, 4)
	go func() {
		defer close(events)
		defer func() {
			if r := recover(); r != nil {
				svc.logger.Error("submission pipeline panicked", fmt.Errorf("panic: %v", r))
				events <- Event{State: StateFailed, Error: msgUnexpected}
			}
		}()
		svc.run(ctx, draft, events)
	}()
	return events
}

func (svc *Service) run(ctx context.Context, draft Draft, events chan<- Event) {
	events <- Event{State: StateValidating}
	draft.Clean()
	if err := draft.Validate(); err != nil {
		verr := err.(*core.ValidationError)
		events <- Event{State: StateRejected, Error: verr.Error(), Errors: verr.Fields}
		return
	}

	// Uploading completes (or fails) strictly before Persisting begins: a
	// registration is never written with a cv_link that does not resolve.
	key := CVObjectKey(draft.CV.Name, NowFunc())
	events <- Event{State: StateUploading}
	var last int
	cvLink, err := svc.files.Upload(ctx, draft.CV.Content, draft.CV.Size, draft.CV.ContentType, key,
		func(pct int) {
			if pct > last && pct <= 100 {
				last = pct
				events <- Event{State: StateUploading, Progress: pct}
			}
		},
	)
	if err != nil {
		svc.logger.Error("uploading CV failed", errors.Wrap(err, "uploading CV"))
		events <- Event{State: StateFailed, Error: msgUploadFailed}
		return
	}

	events <- Event{State: StatePersisting}
	reg, err := svc.repo.CreateRegistration(ctx, draft.registration(cvLink))
	if err != nil {
		// The object at key now exists with no record referencing it; no
		// compensating delete is attempted. Log the key so the orphan can be
		// reconciled.
		perr := &core.PersistenceError{Err: errors.Wrap(err, "creating registration"), OrphanKey: key}
		svc.logger.Error("persisting registration failed, uploaded CV orphaned at "+key, perr)
		events <- Event{State: StateFailed, Error: msgPersistFailed, OrphanKey: key}
		return
	}

	svc.notifyAdmin(reg)
	events <- Event{State: StateSucceeded, Registration: &reg}
}

func (svc *Service) notifyAdmin(reg Registration) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{svc.adminEmail},
		Subject: "تسجيل جديد: " + reg.FullName,
		BodyStr: fmt.Sprintf(
			"تسجيل جديد في المنصة\n\nالاسم: %s\nالبريد الإلكتروني: %s\nرقم الجوال: %s\nالدور: %s\nالسيرة الذاتية: %s\n",
			reg.FullName, reg.Email, reg.Phone, RoleLabel(reg.Role), reg.CVLink,
		),
	})
}

// Admin read side

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Registration, error) {
	filter.Clean()
	regs, err := svc.repo.QueryRegistrations(ctx, filter)
	if err != nil {
		return nil, err
	}
	if regs == nil {
		regs = []Registration{}
	}
	return regs, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Registration, error) {
	return svc.repo.GetRegistration(ctx, id)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteRegistrations(ctx, ids...)
}

func (svc *Service) Subscribe(cb func([]Registration)) (unsubscribe func()) {
	return svc.repo.SubscribeRegistrations(cb)
}

func (svc *Service) Analytics(ctx context.Context) (Summary, error) {
	regs, err := svc.repo.QueryRegistrations(ctx, QueryFilter{})
	if err != nil {
		return Summary{}, err
	}
	return Summarize(regs, NowFunc()), nil
}

func (svc *Service) WriteReportCSV(ctx context.Context, filter QueryFilter, w io.Writer) error {
	regs, err := svc.Query(ctx, filter)
	if err != nil {
		return err
	}
	return WriteReportCSV(w, regs)
}
