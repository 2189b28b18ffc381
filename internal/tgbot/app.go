package tgbot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"dance-admin/internal/config"
	"dance-admin/internal/models"
	"dance-admin/internal/registration"
	"dance-admin/internal/schedule"
	"dance-admin/internal/server"
)

// Catalog lists events and their competitions. *backend.Client satisfies it.
type Catalog interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
	ListCompetitions(ctx context.Context, eventID int) ([]models.Competition, error)
}

// Directory looks up registered entrants. *backend.Session satisfies it.
type Directory interface {
	AllParticipants(ctx context.Context) ([]models.Participant, error)
	AllGroups(ctx context.Context) ([]models.Group, error)
}

// Planner is the schedule workflow. *organizer.Organizer satisfies it.
type Planner interface {
	Preview(ctx context.Context, competitionID int) (schedule.Schedule, error)
	Publish(ctx context.Context, competitionID int) (schedule.Schedule, schedule.SaveOutcome, error)
	Export(ctx context.Context, competitionID int) (schedule.Schedule, error)
	Stored(ctx context.Context, competitionID int) (map[string]string, error)
}

// Registrar creates groups, adds members and enters competitions. *registration.Service satisfies it.
type Registrar interface {
	CreateGroup(ctx context.Context, g models.Group) (int, error)
	AddMember(ctx context.Context, g models.Group, p models.Participant) error
	SubmitEntry(ctx context.Context, e models.CompetitionEntry, p *models.Participant, music io.Reader) error
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type App struct {
	cfg config.Config
	bot *tgbotapi.BotAPI
	out sender
	log *slog.Logger

	catalog   Catalog
	directory Directory
	planner   Planner
	registrar Registrar

	// in-memory state machine for the group creation flow, per admin chat
	state map[int64]userState
}

type userState struct {
	Flow string
	Step int
	Data map[string]string
}

type Deps struct {
	Catalog   Catalog
	Directory Directory
	Planner   Planner
	Registrar Registrar
}

// NewBotAPI connects to Telegram with the configured token.
func NewBotAPI(cfg config.Config) (*tgbotapi.BotAPI, error) {
	b, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, err
	}
	b.Debug = cfg.TelegramDebug
	return b, nil
}

func New(cfg config.Config, b *tgbotapi.BotAPI, d Deps, log *slog.Logger) *App {
	a := newApp(cfg, b, d, log)
	a.bot = b
	return a
}

func newApp(cfg config.Config, out sender, d Deps, log *slog.Logger) *App {
	if log == nil {
		log = slog.Default()
	}
	return &App{
		cfg:       cfg,
		out:       out,
		log:       log.With("module", "tgbot"),
		catalog:   d.Catalog,
		directory: d.Directory,
		planner:   d.Planner,
		registrar: d.Registrar,
		state:     map[int64]userState{},
	}
}

func (a *App) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := a.bot.GetUpdatesChan(u)
	defer a.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			if upd.Message == nil {
				continue
			}
			if err := a.handleMessage(ctx, upd.Message); err != nil {
				a.log.Error("handle msg", "chat_id", upd.Message.Chat.ID, "error", err)
				_ = a.SendText(upd.Message.Chat.ID, "⚠️ "+err.Error())
			}
		}
	}
}

func (a *App) SendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := a.out.Send(msg)
	return err
}

func (a *App) isAdmin(tgID int64) bool {
	return a.cfg.AdminTGIDs[tgID]
}

// ---------- Message handling ----------

const helpText = `Commands:
/events - list events
/competitions <eventID> - competitions of an event
/schedule <competitionID> - preview the generated schedule
/save <competitionID> - generate and save the schedule
/export <competitionID> - write the schedule to the sheet and get a CSV link
/newgroup - create a group
/addmember <groupID> <participantID> - add a participant to a group
/enter <competitionID> solo|group <id> [category 1-4] - enter a competition
/cancel - abort the current flow`

func (a *App) handleMessage(ctx context.Context, m *tgbotapi.Message) error {
	if m.From == nil {
		return nil
	}
	tgID := m.From.ID
	chatID := m.Chat.ID
	txt := strings.TrimSpace(m.Text)

	if !a.isAdmin(tgID) {
		return a.SendText(chatID, "Access denied.")
	}

	cmd, args := parseCommand(txt)
	if cmd == "" {
		// flow-based input
		if st := a.state[chatID]; st.Flow != "" {
			return a.handleFlowInput(ctx, chatID, txt, st)
		}
		return a.SendText(chatID, helpText)
	}

	switch cmd {
	case "start", "help":
		a.state[chatID] = userState{}
		return a.SendText(chatID, helpText)
	case "cancel":
		a.state[chatID] = userState{}
		return a.SendText(chatID, "Cancelled.")
	case "events":
		return a.showEvents(ctx, chatID)
	case "competitions":
		id, err := intArg(args, 0, "eventID")
		if err != nil {
			return a.SendText(chatID, err.Error())
		}
		return a.showCompetitions(ctx, chatID, id)
	case "schedule":
		id, err := intArg(args, 0, "competitionID")
		if err != nil {
			return a.SendText(chatID, err.Error())
		}
		return a.previewSchedule(ctx, chatID, id)
	case "save":
		id, err := intArg(args, 0, "competitionID")
		if err != nil {
			return a.SendText(chatID, err.Error())
		}
		return a.saveSchedule(ctx, chatID, id)
	case "export":
		id, err := intArg(args, 0, "competitionID")
		if err != nil {
			return a.SendText(chatID, err.Error())
		}
		return a.exportSchedule(ctx, chatID, id)
	case "newgroup":
		a.state[chatID] = userState{Flow: "group_create", Step: 1, Data: map[string]string{}}
		return a.SendText(chatID, "New group. Enter the group name:")
	case "addmember":
		groupID, err := intArg(args, 0, "groupID")
		if err != nil {
			return a.SendText(chatID, err.Error())
		}
		participantID, err := intArg(args, 1, "participantID")
		if err != nil {
			return a.SendText(chatID, err.Error())
		}
		return a.addMember(ctx, chatID, groupID, participantID)
	case "enter":
		return a.enter(ctx, chatID, args)
	default:
		return a.SendText(chatID, "Unknown command.\n"+helpText)
	}
}

func (a *App) handleFlowInput(ctx context.Context, chatID int64, txt string, st userState) error {
	switch st.Flow {
	case "group_create":
		return a.handleGroupCreateFlow(ctx, chatID, txt, st)
	default:
		a.state[chatID] = userState{}
		return a.SendText(chatID, "State reset. Send /help")
	}
}

// parseCommand splits "/save@bot 12" into ("save", ["12"]). Plain text yields "".
func parseCommand(txt string) (string, []string) {
	if !strings.HasPrefix(txt, "/") {
		return "", nil
	}
	fields := strings.Fields(txt)
	cmd := strings.TrimPrefix(fields[0], "/")
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd), fields[1:]
}

func intArg(args []string, i int, name string) (int, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("missing %s", name)
	}
	v, err := strconv.Atoi(args[i])
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive number", name)
	}
	return v, nil
}

// ---------- Screens ----------

func (a *App) showEvents(ctx context.Context, chatID int64) error {
	events, err := a.catalog.ListEvents(ctx)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return a.SendText(chatID, "No events yet.")
	}
	var b strings.Builder
	b.WriteString("📅 Events\n")
	for _, e := range events {
		fmt.Fprintf(&b, "%d. %s", e.EventID, e.Name)
		if e.Date != "" {
			b.WriteString(" (" + e.Date + ")")
		}
		b.WriteString("\n")
	}
	return a.SendText(chatID, b.String())
}

func (a *App) showCompetitions(ctx context.Context, chatID int64, eventID int) error {
	comps, err := a.catalog.ListCompetitions(ctx, eventID)
	if err != nil {
		return err
	}
	if len(comps) == 0 {
		return a.SendText(chatID, "No competitions for this event.")
	}
	var b strings.Builder
	b.WriteString("🏆 Competitions\n")
	for _, c := range comps {
		fmt.Fprintf(&b, "%d. %s\n", c.CompetitionID, c.Name)
	}
	return a.SendText(chatID, b.String())
}

// FormatSchedule renders a schedule as one line per slot.
func FormatSchedule(s schedule.Schedule) string {
	if len(s) == 0 {
		return "No participants or groups found for this competition."
	}
	var b strings.Builder
	for _, e := range s {
		fmt.Fprintf(&b, "%s  %s  %s", e.Time, e.Name, e.AgeCategory)
		if e.Type != "" {
			b.WriteString(" / " + e.Type)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (a *App) previewSchedule(ctx context.Context, chatID int64, competitionID int) error {
	s, err := a.planner.Preview(ctx, competitionID)
	if err != nil {
		return err
	}
	text := "🗓 Schedule preview\n" + FormatSchedule(s)

	stored, err := a.planner.Stored(ctx, competitionID)
	if err != nil {
		a.log.Warn("stored schedule", "competition_id", competitionID, "error", err)
		return a.SendText(chatID, text+"\nSaved schedule unavailable: "+err.Error())
	}
	return a.SendText(chatID, text+"\n"+FormatDrift(s, stored))
}

// FormatDrift summarises how the saved schedule differs from s.
func FormatDrift(s schedule.Schedule, stored map[string]string) string {
	if len(stored) == 0 {
		return "Nothing saved yet. Use /save to store it."
	}
	d := s.Compare(stored)
	if d.Empty() {
		return "✅ Saved schedule matches."
	}
	generated := s.Map()
	var b strings.Builder
	b.WriteString("⚠️ Saved schedule differs:\n")
	for _, k := range d.Changed {
		fmt.Fprintf(&b, "%s saved %s, now %s\n", k, stored[k], generated[k])
	}
	for _, k := range d.Missing {
		fmt.Fprintf(&b, "%s not saved, now %s\n", k, generated[k])
	}
	for _, k := range d.Stale {
		fmt.Fprintf(&b, "%s saved %s, no longer entered\n", k, stored[k])
	}
	return b.String()
}

// saveSchedule relies on the planner's notifier for the two save outcomes; here we
// only echo the result into the chat that asked.
func (a *App) saveSchedule(ctx context.Context, chatID int64, competitionID int) error {
	_, out, err := a.planner.Publish(ctx, competitionID)
	if err != nil {
		return err
	}
	lines := []string{
		outcomeLine("Solo schedule", out.Solo),
		outcomeLine("Group schedule", out.Group),
	}
	return a.SendText(chatID, strings.Join(lines, "\n"))
}

func outcomeLine(what string, err error) string {
	if err != nil {
		return "❌ " + what + ": " + err.Error()
	}
	return "✅ " + what + " saved"
}

func (a *App) exportSchedule(ctx context.Context, chatID int64, competitionID int) error {
	link := server.ExportURL(a.cfg, competitionID)
	if _, err := a.planner.Export(ctx, competitionID); err != nil {
		a.log.Warn("sheet export", "competition_id", competitionID, "error", err)
		return a.SendText(chatID, "Sheet export failed: "+err.Error()+"\n📤 CSV: "+link)
	}
	return a.SendText(chatID, "✅ Written to the spreadsheet.\n📤 CSV: "+link)
}

// ---------- Group flows ----------

func (a *App) handleGroupCreateFlow(ctx context.Context, chatID int64, txt string, st userState) error {
	switch st.Step {
	case 1:
		if txt == "" {
			return a.SendText(chatID, "The name cannot be empty. Enter the group name:")
		}
		st.Data["name"] = txt
		st.Step = 2
		a.state[chatID] = st
		return a.SendText(chatID, "Type (Duo, Trio or Grup):")
	case 2:
		t, ok := parseGroupType(txt)
		if !ok {
			return a.SendText(chatID, "Please answer Duo, Trio or Grup:")
		}
		st.Data["type"] = string(t)
		st.Step = 3
		a.state[chatID] = st
		return a.SendText(chatID, "Number of participants:")
	case 3:
		if _, err := strconv.Atoi(txt); err != nil {
			return a.SendText(chatID, "Enter a number:")
		}
		st.Data["num"] = txt
		st.Step = 4
		a.state[chatID] = st
		return a.SendText(chatID, "Age category (1: under 10 years, 2: between 10 and 20 years, 3: between 20 and 30 years, 4: 30+ years):")
	case 4:
		cat, ok := parseCategory(txt)
		if !ok {
			return a.SendText(chatID, "Pick 1, 2, 3 or 4:")
		}
		num, _ := strconv.Atoi(st.Data["num"])
		g := models.Group{
			Name:            st.Data["name"],
			Type:            st.Data["type"],
			NumParticipants: num,
			AgeCategory:     cat,
		}
		a.state[chatID] = userState{}

		id, err := a.registrar.CreateGroup(ctx, g)
		if registration.IsRejected(err) {
			return a.SendText(chatID, "❌ "+err.Error())
		}
		if err != nil {
			return err
		}
		return a.SendText(chatID, fmt.Sprintf("✅ Group created successfully (id %d)", id))
	}
	a.state[chatID] = userState{}
	return nil
}

func parseGroupType(s string) (models.GroupType, bool) {
	for _, t := range []models.GroupType{models.GroupDuo, models.GroupTrio, models.GroupGrup} {
		if strings.EqualFold(strings.TrimSpace(s), string(t)) {
			return t, true
		}
	}
	return "", false
}

func parseCategory(s string) (models.AgeCategory, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= len(models.AgeCategories) {
		return models.AgeCategories[n-1], true
	}
	for _, c := range models.AgeCategories {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return "", false
}

var errNotFound = errors.New("not found")

func (a *App) addMember(ctx context.Context, chatID int64, groupID, participantID int) error {
	g, p, err := a.lookupMember(ctx, groupID, participantID)
	if errors.Is(err, errNotFound) {
		return a.SendText(chatID, err.Error())
	}
	if err != nil {
		return err
	}

	err = a.registrar.AddMember(ctx, g, p)
	if registration.IsRejected(err) {
		return a.SendText(chatID, "❌ "+err.Error())
	}
	if err != nil {
		return err
	}
	return a.SendText(chatID, "✅ Participant added successfully to the group")
}

func (a *App) lookupMember(ctx context.Context, groupID, participantID int) (models.Group, models.Participant, error) {
	g, err := a.findGroup(ctx, groupID)
	if err != nil {
		return g, models.Participant{}, err
	}
	p, err := a.findParticipant(ctx, participantID)
	return g, p, err
}

func (a *App) findGroup(ctx context.Context, id int) (models.Group, error) {
	groups, err := a.directory.AllGroups(ctx)
	if err != nil {
		return models.Group{}, err
	}
	for _, g := range groups {
		if g.GroupID == id {
			return g, nil
		}
	}
	return models.Group{}, fmt.Errorf("group %d %w", id, errNotFound)
}

func (a *App) findParticipant(ctx context.Context, id int) (models.Participant, error) {
	participants, err := a.directory.AllParticipants(ctx)
	if err != nil {
		return models.Participant{}, err
	}
	for _, p := range participants {
		if p.ParticipantID == id {
			return p, nil
		}
	}
	return models.Participant{}, fmt.Errorf("participant %d %w", id, errNotFound)
}

// ---------- Competition entries ----------

const enterUsage = "Usage: /enter <competitionID> solo|group <id> [category 1-4]"

func (a *App) enter(ctx context.Context, chatID int64, args []string) error {
	competitionID, err := intArg(args, 0, "competitionID")
	if err != nil {
		return a.SendText(chatID, err.Error()+"\n"+enterUsage)
	}
	if len(args) < 2 {
		return a.SendText(chatID, enterUsage)
	}
	id, err := intArg(args, 2, "id")
	if err != nil {
		return a.SendText(chatID, err.Error()+"\n"+enterUsage)
	}
	var category models.AgeCategory
	if len(args) > 3 {
		c, ok := parseCategory(strings.Join(args[3:], " "))
		if !ok {
			return a.SendText(chatID, "Pick category 1, 2, 3 or 4.")
		}
		category = c
	}

	var (
		e models.CompetitionEntry
		p *models.Participant
	)
	switch strings.ToLower(args[1]) {
	case "solo":
		found, err := a.findParticipant(ctx, id)
		if errors.Is(err, errNotFound) {
			return a.SendText(chatID, err.Error())
		}
		if err != nil {
			return err
		}
		e, p = registration.SoloEntry(competitionID, found, category), &found
	case "group":
		g, err := a.findGroup(ctx, id)
		if errors.Is(err, errNotFound) {
			return a.SendText(chatID, err.Error())
		}
		if err != nil {
			return err
		}
		e = registration.GroupEntry(competitionID, g, category)
	default:
		return a.SendText(chatID, enterUsage)
	}

	err = a.registrar.SubmitEntry(ctx, e, p, nil)
	if registration.IsRejected(err) {
		return a.SendText(chatID, "❌ "+err.Error())
	}
	if err != nil {
		return err
	}
	return a.SendText(chatID, fmt.Sprintf("✅ Entered in competition %d (%s, %s)", competitionID, e.Type, e.AgeCategory))
}
