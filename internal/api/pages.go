package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/ashureev/fslsm-tutor/internal/domain"
	"github.com/ashureev/fslsm-tutor/internal/experiment"
	"github.com/ashureev/fslsm-tutor/internal/fslsm"
	"github.com/ashureev/fslsm-tutor/internal/identity"
	"github.com/ashureev/fslsm-tutor/internal/middleware"
	"github.com/ashureev/fslsm-tutor/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

var nextExamLabels = map[int]string{
	1: "رفتن به آزمون اول",
	2: "رفتن به آزمون دوم",
	3: "رفتن به آزمون سوم",
}

// RegisterRoutes registers the page routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Home)
	r.Get("/fslsm", h.Questionnaire)
	r.Post("/fslsm/submit", h.SubmitQuestionnaire)
	r.Get("/end", h.End)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireParticipant)
		r.Get("/chat", h.Chat)
		r.Get("/exam/{id}", h.Exam)
		r.Post("/exam/{id}/submit", h.SubmitExam)
		r.Get("/post_test", h.PostTest)
		r.Post("/post_test/submit", h.SubmitPostTest)
	})
}

// Home clears any existing session and renders the entry page.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.End(w, r); err != nil {
		slog.Error("Failed to clear session on homepage", "error", err)
	}
	h.render(w, web.PageHome, web.Page{
		Title:    "پرتال آزمایش",
		Timeline: timeline(domain.StageNone),
	})
}

// Questionnaire renders the learning-style questionnaire.
func (h *Handler) Questionnaire(w http.ResponseWriter, _ *http.Request) {
	items := make([]web.QuestionItem, fslsm.ItemCount)
	for i := range items {
		items[i] = web.QuestionItem{Number: i + 1, Field: fslsm.FieldName(i)}
	}
	h.render(w, web.PageFSLSM, web.Page{
		Title:    "پرسشنامه سبک یادگیری",
		Timeline: timeline(domain.StageFSLSM),
		Items:    items,
	})
}

// SubmitQuestionnaire scores the questionnaire, assigns a condition and
// starts a new session at chat1.
func (h *Handler) SubmitQuestionnaire(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.PostFormValue("name"))
	if name == "" {
		http.Redirect(w, r, "/fslsm", http.StatusFound)
		return
	}

	answers := fslsm.FromForm(r.PostFormValue)
	computed := fslsm.ComputeProfile(answers)
	group := h.assigner.AssignGroup()

	p, err := domain.NewParticipant(name, group, experiment.InitialProfile(group, computed), computed, h.sessions.Now(), h.sessions.Lifetime())
	if err != nil {
		slog.Error("Failed to create participant", "error", err)
		http.Redirect(w, r, "/fslsm", http.StatusFound)
		return
	}

	sid, err := h.sessions.Start(w, r, p)
	if err != nil {
		slog.Error("Failed to start session", "error", err)
		http.Error(w, "failed to start session", http.StatusInternalServerError)
		return
	}
	if h.groups != nil {
		h.groups.ObserveGroupAssigned(group)
	}

	slog.Info("Questionnaire submitted",
		"session_id", sid,
		"request_id", chiMiddleware.GetReqID(r.Context()),
		"group", group,
		"answered", fslsm.Answered(answers),
		"profile", computed.String(),
		"stage", p.Stage,
	)
	http.Redirect(w, r, "/chat", http.StatusFound)
}

// Chat renders the chat page. The next-step link is shown only during a
// chat stage.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	p := identity.ParticipantFromContext(r.Context())

	page := web.Page{
		Title:    "گفتگو با دستیار",
		Timeline: timeline(p.Stage),
		Name:     p.Name,
		Group:    string(p.Group),
	}
	if p.Stage.IsChatStage() {
		round := p.Stage.Round()
		page.NextURL = fmt.Sprintf("/exam/%d", round)
		page.NextLabel = nextExamLabels[round]
	}
	h.render(w, web.PageChat, page)
}

func examID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 || id > domain.ExamCount {
		return 0, false
	}
	return id, true
}

// Exam renders exam {id}. A participant still on the matching chat stage is
// promoted to the exam first.
func (h *Handler) Exam(w http.ResponseWriter, r *http.Request) {
	id, ok := examID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	p := identity.ParticipantFromContext(r.Context())

	access := h.machine.RequireStage(p, domain.ExamStage(id))
	if access.Promoted {
		if err := h.sessions.Save(r, p); err != nil {
			slog.Error("Failed to save session", "exam_id", id, "error", err)
			http.Error(w, "failed to save session", http.StatusInternalServerError)
			return
		}
	}
	if !access.Granted {
		http.Redirect(w, r, fallbackURL(access.Fallback), http.StatusFound)
		return
	}

	h.render(w, web.PageExam, web.Page{
		Title:     fmt.Sprintf("آزمون شماره %d", id),
		Timeline:  timeline(p.Stage),
		ExamID:    id,
		SubmitURL: fmt.Sprintf("/exam/%d/submit", id),
	})
}

// SubmitExam records an exam submission and advances the participant.
func (h *Handler) SubmitExam(w http.ResponseWriter, r *http.Request) {
	id, ok := examID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	p := identity.ParticipantFromContext(r.Context())

	if access := h.machine.CheckStage(p, domain.ExamStage(id)); !access.Granted {
		http.Redirect(w, r, fallbackURL(access.Fallback), http.StatusFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	slog.Info("Exam submitted",
		"session_id", identity.SessionIDFromContext(r.Context()),
		"exam_id", id,
		"group", p.Group,
		"answers", len(r.PostForm),
	)

	if err := h.machine.AdvanceAfterExam(p, id); err != nil {
		slog.Error("Failed to advance after exam", "exam_id", id, "error", err)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if err := h.sessions.Save(r, p); err != nil {
		slog.Error("Failed to save session", "exam_id", id, "error", err)
		http.Error(w, "failed to save session", http.StatusInternalServerError)
		return
	}

	if p.Stage == domain.StagePostTest {
		http.Redirect(w, r, "/post_test", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/chat", http.StatusFound)
}

// PostTest renders the final questionnaire.
func (h *Handler) PostTest(w http.ResponseWriter, r *http.Request) {
	p := identity.ParticipantFromContext(r.Context())
	if access := h.machine.RequireStage(p, domain.StagePostTest); !access.Granted {
		http.Redirect(w, r, fallbackURL(access.Fallback), http.StatusFound)
		return
	}
	h.render(w, web.PagePostTest, web.Page{
		Title:    "پرسشنامه نهایی",
		Timeline: timeline(p.Stage),
	})
}

// SubmitPostTest records the final questionnaire and ends the experiment.
func (h *Handler) SubmitPostTest(w http.ResponseWriter, r *http.Request) {
	p := identity.ParticipantFromContext(r.Context())
	if access := h.machine.CheckStage(p, domain.StagePostTest); !access.Granted {
		http.Redirect(w, r, fallbackURL(access.Fallback), http.StatusFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	slog.Info("Post-test submitted",
		"session_id", identity.SessionIDFromContext(r.Context()),
		"group", p.Group,
		"rating", r.PostFormValue("q1_rating"),
		"feedback_length", len(r.PostFormValue("q2_feedback")),
	)

	if err := h.machine.AdvanceAfterPostTest(p); err != nil {
		slog.Error("Failed to advance after post-test", "error", err)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if err := h.sessions.Save(r, p); err != nil {
		slog.Error("Failed to save session", "error", err)
		http.Error(w, "failed to save session", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/end", http.StatusFound)
}

// End renders the completion page and then discards the session.
func (h *Handler) End(w http.ResponseWriter, r *http.Request) {
	page := web.Page{
		Title:    "پایان",
		Timeline: timeline(domain.StageEnd),
	}
	if p := identity.ParticipantFromContext(r.Context()); p != nil {
		page.Name = p.Name
		slog.Info("Participant finished",
			"session_id", identity.SessionIDFromContext(r.Context()),
			"group", p.Group,
			"stage", p.Stage,
			"turns", len(p.Conversation),
		)
	}

	body, err := h.pages.RenderBytes(web.PageEnd, page)
	if err != nil {
		slog.Error("Failed to render page", "page", web.PageEnd, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if err := h.sessions.End(w, r); err != nil {
		slog.Error("Failed to clear session", "error", err)
	}
	writeHTML(w, body)
}
