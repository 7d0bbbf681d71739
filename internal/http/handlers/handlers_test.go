package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-rabbitry/internal/bot"
	"github.com/tbourn/go-rabbitry/internal/domain"
	"github.com/tbourn/go-rabbitry/internal/http/middleware"
	"github.com/tbourn/go-rabbitry/internal/services"
)

var refNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// captureLogs routes the global logger into a buffer for the test's lifetime.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func daysAgo(n int) *time.Time {
	t := refNow.Add(-time.Duration(n) * 24 * time.Hour)
	return &t
}

//
// Stubs
//

type stubRabbits struct {
	rows     map[int]domain.Rabbit
	err      error
	statsErr error
	updated  time.Time
}

func newStubRabbits(rows ...domain.Rabbit) *stubRabbits {
	s := &stubRabbits{rows: map[int]domain.Rabbit{}, updated: refNow}
	for _, r := range rows {
		s.rows[r.CageID] = r
	}
	return s
}

func (s *stubRabbits) Load(_ context.Context, id int) (domain.Rabbit, error) {
	if id <= 0 {
		return domain.Rabbit{}, services.ErrInvalidCage
	}
	if s.err != nil {
		return domain.Rabbit{}, s.err
	}
	if r, ok := s.rows[id]; ok {
		return r, nil
	}
	return domain.EmptyRabbit(id), nil
}

func (s *stubRabbits) ResolveFather(_ context.Context, rb *domain.Rabbit) (*domain.Rabbit, error) {
	if rb.FatherID == nil {
		return nil, nil
	}
	if f, ok := s.rows[*rb.FatherID]; ok && !f.IsEmpty {
		return &f, nil
	}
	return nil, nil
}

func (s *stubRabbits) Register(_ context.Context, id int, g domain.Gender, name string, father *int) (*domain.Rabbit, error) {
	if id <= 0 {
		return nil, services.ErrInvalidCage
	}
	if strings.TrimSpace(name) == "" {
		return nil, services.ErrEmptyName
	}
	r := domain.Rabbit{CageID: id, Gender: g, Name: strings.TrimSpace(name), FatherID: father, Version: 1}
	s.rows[id] = r
	s.updated = s.updated.Add(time.Second)
	return &r, nil
}

func (s *stubRabbits) Delete(ctx context.Context, id int) error {
	r, err := s.Load(ctx, id)
	if err != nil {
		return err
	}
	if r.IsEmpty {
		return services.ErrCageEmpty
	}
	r.IsEmpty = true
	s.rows[id] = r
	return nil
}

func (s *stubRabbits) ResetBreeding(ctx context.Context, id int) (bool, error) {
	r, err := s.Load(ctx, id)
	if err != nil || r.IsEmpty || !r.IsFemale() {
		return false, err
	}
	r.LastBreedingDate = nil
	s.rows[id] = r
	return true, nil
}

func (s *stubRabbits) occupied() []domain.Rabbit {
	var out []domain.Rabbit
	for i := 1; i <= 100; i++ {
		if r, ok := s.rows[i]; ok && !r.IsEmpty {
			out = append(out, r)
		}
	}
	return out
}

func (s *stubRabbits) ListPage(_ context.Context, page, pageSize int) ([]domain.Rabbit, int64, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	all := s.occupied()
	start := (page - 1) * pageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (s *stubRabbits) BredFemales(_ context.Context) ([]domain.Rabbit, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.Rabbit
	for _, r := range s.occupied() {
		if r.IsFemale() && r.LastBreedingDate != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubRabbits) Stats(_ context.Context) (int64, *time.Time, error) {
	if s.statsErr != nil {
		return 0, nil, s.statsErr
	}
	u := s.updated
	return int64(len(s.occupied())), &u, nil
}

// stubBreeding applies the real readiness rules against stubRabbits.
type stubBreeding struct {
	rabbits *stubRabbits
	calls   int
}

func (b *stubBreeding) AttemptBreed(ctx context.Context, x, y int) (*services.BreedOutcome, error) {
	b.calls++
	ra, err := b.rabbits.Load(ctx, x)
	if err != nil {
		return nil, err
	}
	rb, err := b.rabbits.Load(ctx, y)
	if err != nil {
		return nil, err
	}
	if ra.IsEmpty || rb.IsEmpty {
		return nil, services.ErrCageEmpty
	}
	if ra.Gender == rb.Gender {
		return nil, services.ErrSameGender
	}
	female, male := ra, rb
	if male.IsFemale() {
		female, male = male, female
	}
	if !female.IsReadyToBreed(refNow) {
		return nil, &services.NotReadyError{DaysRemaining: female.DaysUntilReady(refNow)}
	}
	now := refNow
	female.LastBreedingDate = &now
	b.rabbits.rows[female.CageID] = female
	return &services.BreedOutcome{Female: female, Male: male, BredAt: now}, nil
}

type stubChats struct {
	rows []domain.ChatRegistration
	err  error
}

func (s *stubChats) Register(_ context.Context, id int64, name string) (*domain.ChatRegistration, error) {
	if s.err != nil {
		return nil, s.err
	}
	reg := domain.ChatRegistration{ChatID: id, ChatName: name, LastActive: refNow}
	s.rows = append(s.rows, reg)
	return &reg, nil
}

func (s *stubChats) List(_ context.Context) ([]domain.ChatRegistration, error) {
	return s.rows, s.err
}

type stubBot struct{ got []bot.Update }

func (b *stubBot) Handle(_ context.Context, u bot.Update) bot.Reply {
	b.got = append(b.got, u)
	return bot.Reply{Text: "echo: " + u.Text + u.Callback, Keyboard: [][]bot.Button{{{Text: "Menu", Data: "menu"}}}}
}

type stubIdem struct {
	recs map[string]domain.Idempotency
}

func (s *stubIdem) Lookup(_ context.Context, actor, scope, key string, _ time.Time) (*domain.Idempotency, error) {
	if r, ok := s.recs[actor+"|"+scope+"|"+key]; ok {
		return &r, nil
	}
	return nil, nil
}

func (s *stubIdem) Remember(_ context.Context, actor, scope, key string, cageID, status int) error {
	s.recs[actor+"|"+scope+"|"+key] = domain.Idempotency{Actor: actor, Scope: scope, Key: key, CageID: cageID, Status: status, CreatedAt: refNow}
	return nil
}

//
// Harness
//

type harness struct {
	r        *gin.Engine
	rabbits  *stubRabbits
	breeding *stubBreeding
	chats    *stubChats
	bot      *stubBot
	idem     *stubIdem
}

func newHarness(rows ...domain.Rabbit) *harness {
	gin.SetMode(gin.TestMode)
	rs := newStubRabbits(rows...)
	hs := &harness{
		rabbits:  rs,
		breeding: &stubBreeding{rabbits: rs},
		chats:    &stubChats{},
		bot:      &stubBot{},
		idem:     &stubIdem{recs: map[string]domain.Idempotency{}},
	}
	h := New(Deps{
		Rabbits:     hs.rabbits,
		Breeding:    hs.breeding,
		Chats:       hs.chats,
		Bot:         hs.bot,
		Idempotency: hs.idem,
		Locale:      "en",
		Now:         func() time.Time { return refNow },
	})

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Actor())
	r.GET("/rabbits", h.ListRabbits)
	r.GET("/rabbits/:cage", h.GetRabbit)
	r.PUT("/rabbits/:cage", h.RegisterRabbit)
	r.DELETE("/rabbits/:cage", h.DeleteRabbit)
	r.POST("/rabbits/:cage/breed", middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, nil), h.BreedRabbit)
	r.POST("/rabbits/:cage/breeding/reset", h.ResetBreeding)
	r.GET("/chats", h.ListChats)
	r.POST("/chats", h.RegisterChat)
	r.POST("/bot/updates", h.BotUpdate)
	r.GET("/notifications/preview", h.PreviewNotifications)
	hs.r = r
	return hs
}

func (hs *harness) do(method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	hs.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %T: %v (body=%s)", v, err, w.Body.String())
	}
	return v
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[ErrorResponse](t, w).Code
}

func female(id int, name string, bred *time.Time) domain.Rabbit {
	return domain.Rabbit{CageID: id, Name: name, Gender: domain.GenderFemale, LastBreedingDate: bred}
}

func male(id int, name string) domain.Rabbit {
	return domain.Rabbit{CageID: id, Name: name, Gender: domain.GenderMale}
}

//
// Tests
//

func TestClampPaginationAndCageParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		query          string
		page, pageSize int
	}{
		{"", 1, 20},
		{"page=3&page_size=5", 3, 5},
		{"page=0&page_size=0", 1, 1},
		{"page=x&page_size=500", 1, 100},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/rabbits?"+tc.query, nil)
		if p, ps := clampPagination(c); p != tc.page || ps != tc.pageSize {
			t.Errorf("%q: got (%d,%d) want (%d,%d)", tc.query, p, ps, tc.page, tc.pageSize)
		}
	}

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Params = gin.Params{{Key: "cage", Value: "-4"}}
	if got := cageParam(c); got != 0 {
		t.Fatalf("negative cage = %d", got)
	}
	c.Params = gin.Params{{Key: "cage", Value: "12"}}
	if got := cageParam(c); got != 12 {
		t.Fatalf("cage = %d", got)
	}
}

func TestGetRabbit_OccupiedEmptyInvalid(t *testing.T) {
	f := female(3, "Clover", daysAgo(26))
	f.FatherID = new(int)
	*f.FatherID = 4
	hs := newHarness(f, male(4, "Thumper"))

	w := hs.do(http.MethodGet, "/rabbits/3", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	v := decode[RabbitView](t, w)
	if v.Name != "Clover" || v.Ready || v.DaysUntilReady != 4 || v.Pregnancy != domain.PregnancyPreparing {
		t.Fatalf("view = %+v", v)
	}
	if v.DaysSinceBreeding == nil || *v.DaysSinceBreeding != 26 {
		t.Fatalf("days since = %v", v.DaysSinceBreeding)
	}
	if v.Father == nil || v.Father.CageID != 4 {
		t.Fatalf("father = %+v", v.Father)
	}

	w = hs.do(http.MethodGet, "/rabbits/5", "", nil)
	v = decode[RabbitView](t, w)
	if w.Code != http.StatusOK || !v.IsEmpty || v.Gender != domain.GenderMale || v.LastBreedingDate != nil || v.Ready {
		t.Fatalf("empty cage view = %d %+v", w.Code, v)
	}

	w = hs.do(http.MethodGet, "/rabbits/abc", "", nil)
	if w.Code != http.StatusBadRequest || errCode(t, w) != ErrCodeInvalidCage {
		t.Fatalf("invalid cage = %d %s", w.Code, w.Body.String())
	}
}

func TestGetRabbit_StoreFailureIs500(t *testing.T) {
	captureLogs(t)
	hs := newHarness()
	hs.rabbits.err = errors.New("disk on fire")

	w := hs.do(http.MethodGet, "/rabbits/1", "", nil)
	if w.Code != http.StatusInternalServerError || errCode(t, w) != ErrCodeInternal {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "disk on fire") {
		t.Fatalf("store detail leaked: %s", w.Body.String())
	}
}

func TestRegisterRabbit(t *testing.T) {
	hs := newHarness()

	w := hs.do(http.MethodPut, "/rabbits/7", `{"gender":"Female","name":"  Daisy ","father_id":4}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	v := decode[RabbitView](t, w)
	if v.CageID != 7 || v.Gender != domain.GenderFemale || v.Name != "Daisy" || !v.Ready || v.FatherID == nil {
		t.Fatalf("view = %+v", v)
	}

	cases := []struct {
		body, code string
	}{
		{`{"gender":"male"}`, ErrCodeBadRequest},
		{`not json`, ErrCodeBadRequest},
		{`{"gender":"robot","name":"X"}`, ErrCodeInvalidGender},
		{`{"gender":"male","name":"   "}`, ErrCodeEmptyName},
	}
	for _, tc := range cases {
		w := hs.do(http.MethodPut, "/rabbits/7", tc.body, nil)
		if w.Code != http.StatusBadRequest || errCode(t, w) != tc.code {
			t.Errorf("%s: got %d %s", tc.body, w.Code, w.Body.String())
		}
	}
}

func TestDeleteRabbit(t *testing.T) {
	hs := newHarness(male(4, "Thumper"))

	if w := hs.do(http.MethodDelete, "/rabbits/4", "", nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", w.Code)
	}
	w := hs.do(http.MethodDelete, "/rabbits/4", "", nil)
	if w.Code != http.StatusNotFound || errCode(t, w) != ErrCodeCageEmpty {
		t.Fatalf("second delete = %d %s", w.Code, w.Body.String())
	}
}

func TestListRabbits_PageAndETag(t *testing.T) {
	hs := newHarness(female(3, "Clover", nil), male(4, "Thumper"), male(9, "Bo"))

	w := hs.do(http.MethodGet, "/rabbits?page=1&page_size=2", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	etag := w.Header().Get("ETag")
	if !strings.HasPrefix(etag, `W/"rabbits:1:2:3:`) {
		t.Fatalf("etag = %q", etag)
	}
	resp := decode[ListRabbitsResponse](t, w)
	if len(resp.Rabbits) != 2 || resp.Rabbits[0].CageID != 3 || resp.Pagination.Total != 3 ||
		resp.Pagination.TotalPages != 2 || !resp.Pagination.HasNext {
		t.Fatalf("resp = %+v", resp)
	}

	w = hs.do(http.MethodGet, "/rabbits?page=1&page_size=2", "", map[string]string{"If-None-Match": etag})
	if w.Code != http.StatusNotModified {
		t.Fatalf("conditional = %d", w.Code)
	}

	// Any write changes the fingerprint.
	hs.do(http.MethodPut, "/rabbits/10", `{"gender":"male","name":"Max"}`, nil)
	w = hs.do(http.MethodGet, "/rabbits?page=1&page_size=2", "", map[string]string{"If-None-Match": etag})
	if w.Code != http.StatusOK || w.Header().Get("ETag") == etag {
		t.Fatalf("stale etag accepted: %d %q", w.Code, w.Header().Get("ETag"))
	}
}

func TestListRabbits_StatsFailureSkipsETag(t *testing.T) {
	captureLogs(t)
	hs := newHarness(male(1, "A"))
	hs.rabbits.statsErr = errors.New("stats down")

	w := hs.do(http.MethodGet, "/rabbits", "", nil)
	if w.Code != http.StatusOK || w.Header().Get("ETag") != "" {
		t.Fatalf("got %d etag=%q", w.Code, w.Header().Get("ETag"))
	}
}

func TestBreedRabbit_NotReadyThenReady(t *testing.T) {
	hs := newHarness(female(3, "Clover", daysAgo(29)), male(4, "Thumper"))

	w := hs.do(http.MethodPost, "/rabbits/3/breed", `{"partner_cage":4}`, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d", w.Code)
	}
	er := decode[ErrorResponse](t, w)
	if er.Code != ErrCodeNotReady || !strings.Contains(er.Message, "1 day(s) remaining.") {
		t.Fatalf("err = %+v", er)
	}
	if hs.rabbits.rows[3].LastBreedingDate.Equal(refNow) {
		t.Fatalf("rejected breeding wrote a date")
	}

	hs.rabbits.rows[3] = female(3, "Clover", daysAgo(30))
	w = hs.do(http.MethodPost, "/rabbits/4/breed", `{"partner_cage":3}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	resp := decode[BreedResponse](t, w)
	if resp.Female.CageID != 3 || resp.Male.CageID != 4 || !resp.BredAt.Equal(refNow) {
		t.Fatalf("resp = %+v", resp)
	}
	if w.Header().Get(middleware.HeaderReplayed) != "" {
		t.Fatalf("first answer must not be marked replayed")
	}
}

func TestBreedRabbit_Rejections(t *testing.T) {
	hs := newHarness(male(1, "A"), male(2, "B"), female(3, "C", nil))

	cases := []struct {
		path, body string
		status     int
		code       string
	}{
		{"/rabbits/1/breed", `{"partner_cage":2}`, http.StatusUnprocessableEntity, ErrCodeSameGender},
		{"/rabbits/3/breed", `{"partner_cage":8}`, http.StatusNotFound, ErrCodeCageEmpty},
		{"/rabbits/3/breed", `{"partner_cage":0}`, http.StatusBadRequest, ErrCodeBadRequest},
		{"/rabbits/3/breed", `{}`, http.StatusBadRequest, ErrCodeBadRequest},
		{"/rabbits/zero/breed", `{"partner_cage":1}`, http.StatusBadRequest, ErrCodeInvalidCage},
	}
	for _, tc := range cases {
		w := hs.do(http.MethodPost, tc.path, tc.body, nil)
		if w.Code != tc.status || errCode(t, w) != tc.code {
			t.Errorf("%s %s: got %d %s", tc.path, tc.body, w.Code, w.Body.String())
		}
	}
}

func TestBreedRabbit_IdempotentReplay(t *testing.T) {
	hs := newHarness(female(3, "Clover", nil), male(4, "Thumper"))
	hdr := map[string]string{middleware.HeaderIdempotencyKey: "breed-3-4", middleware.HeaderActor: "keeper"}

	first := hs.do(http.MethodPost, "/rabbits/3/breed", `{"partner_cage":4}`, hdr)
	if first.Code != http.StatusOK {
		t.Fatalf("first = %d %s", first.Code, first.Body.String())
	}

	// Without idempotency the female would now be "not ready".
	second := hs.do(http.MethodPost, "/rabbits/3/breed", `{"partner_cage":4}`, hdr)
	if second.Code != http.StatusOK || second.Header().Get(middleware.HeaderReplayed) != "true" {
		t.Fatalf("replay = %d %s", second.Code, second.Body.String())
	}
	if hs.breeding.calls != 1 {
		t.Fatalf("breeding calls = %d, want 1", hs.breeding.calls)
	}
	resp := decode[BreedResponse](t, second)
	if resp.Female.CageID != 3 || resp.Male.CageID != 4 || !resp.BredAt.Equal(refNow) {
		t.Fatalf("replayed resp = %+v", resp)
	}

	// Another actor with the same key is a fresh request.
	other := hs.do(http.MethodPost, "/rabbits/3/breed", `{"partner_cage":4}`,
		map[string]string{middleware.HeaderIdempotencyKey: "breed-3-4", middleware.HeaderActor: "someone"})
	if other.Code != http.StatusConflict || errCode(t, other) != ErrCodeNotReady {
		t.Fatalf("other actor = %d %s", other.Code, other.Body.String())
	}
}

func TestResetBreeding(t *testing.T) {
	hs := newHarness(female(3, "Clover", daysAgo(5)), male(4, "Thumper"))

	w := hs.do(http.MethodPost, "/rabbits/3/breeding/reset", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if resp := decode[ResetBreedingResponse](t, w); resp.Rabbit.LastBreedingDate != nil {
		t.Fatalf("date not cleared: %+v", resp)
	}

	w = hs.do(http.MethodPost, "/rabbits/4/breeding/reset", "", nil)
	if w.Code != http.StatusConflict || errCode(t, w) != ErrCodeNotFemale {
		t.Fatalf("male = %d %s", w.Code, w.Body.String())
	}
	w = hs.do(http.MethodPost, "/rabbits/8/breeding/reset", "", nil)
	if w.Code != http.StatusNotFound || errCode(t, w) != ErrCodeCageEmpty {
		t.Fatalf("empty = %d %s", w.Code, w.Body.String())
	}
}

func TestChats_RegisterAndList(t *testing.T) {
	hs := newHarness()

	w := hs.do(http.MethodGet, "/chats", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"chats":[]`) {
		t.Fatalf("empty list = %d %s", w.Code, w.Body.String())
	}

	w = hs.do(http.MethodPost, "/chats", `{"chat_id":-100,"chat_name":"Keepers"}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register = %d", w.Code)
	}
	if w = hs.do(http.MethodPost, "/chats", `{"chat_name":"no id"}`, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("missing id = %d", w.Code)
	}

	resp := decode[ListChatsResponse](t, hs.do(http.MethodGet, "/chats", "", nil))
	if len(resp.Chats) != 1 || resp.Chats[0].ChatID != -100 || resp.Chats[0].ChatName != "Keepers" {
		t.Fatalf("list = %+v", resp)
	}
}

func TestBotUpdate(t *testing.T) {
	hs := newHarness()

	w := hs.do(http.MethodPost, "/bot/updates", `{"chat_id":42,"user_id":7,"text":"/start"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	reply := decode[bot.Reply](t, w)
	if reply.Text != "echo: /start" || len(reply.Keyboard) != 1 || reply.Keyboard[0][0].Data != "menu" {
		t.Fatalf("reply = %+v", reply)
	}
	if len(hs.bot.got) != 1 || hs.bot.got[0].ChatID != 42 || hs.bot.got[0].UserID != 7 {
		t.Fatalf("updates = %+v", hs.bot.got)
	}

	for _, body := range []string{`{"text":"/start"}`, `{"chat_id":42}`, `[]`} {
		if w := hs.do(http.MethodPost, "/bot/updates", body, nil); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", body, w.Code)
		}
	}
}

func TestPreviewNotifications(t *testing.T) {
	hs := newHarness(
		female(1, "Early", daysAgo(10)),
		female(3, "Clover", daysAgo(26)),
		female(5, "Bella", daysAgo(30)),
		male(4, "Thumper"),
	)

	w := hs.do(http.MethodGet, "/notifications/preview", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	p := decode[NotificationPreview](t, w)
	if p.Checked != 3 || len(p.Entries) != 2 {
		t.Fatalf("preview = %+v", p)
	}
	if p.Entries[0].CageID != 3 || p.Entries[0].Status != domain.PregnancyPreparing || p.Entries[0].Days != 26 {
		t.Fatalf("entry 0 = %+v", p.Entries[0])
	}
	if p.Entries[1].CageID != 5 || p.Entries[1].Status != domain.PregnancyDueSoon {
		t.Fatalf("entry 1 = %+v", p.Entries[1])
	}
	if !strings.Contains(p.Entries[0].Line, "About 2 day(s) until birth.") || !strings.Contains(p.Text, "Pregnant does update") {
		t.Fatalf("rendered text = %q / %q", p.Entries[0].Line, p.Text)
	}

	ru := decode[NotificationPreview](t, hs.do(http.MethodGet, "/notifications/preview?locale=ru", "", nil))
	if ru.Text == p.Text {
		t.Fatalf("locale=ru should translate the digest")
	}
}

func TestPreviewNotifications_NothingDue(t *testing.T) {
	hs := newHarness(female(1, "Early", daysAgo(3)))
	p := decode[NotificationPreview](t, hs.do(http.MethodGet, "/notifications/preview", "", nil))
	if p.Checked != 1 || len(p.Entries) != 0 || p.Text != "" {
		t.Fatalf("preview = %+v", p)
	}
}

func TestServiceError_Mapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	captureLogs(t)
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{&services.NotReadyError{DaysRemaining: 2}, http.StatusConflict, ErrCodeNotReady},
		{services.ErrInvalidCage, http.StatusBadRequest, ErrCodeInvalidCage},
		{services.ErrInvalidGender, http.StatusBadRequest, ErrCodeInvalidGender},
		{services.ErrEmptyName, http.StatusBadRequest, ErrCodeEmptyName},
		{services.ErrCageEmpty, http.StatusNotFound, ErrCodeCageEmpty},
		{services.ErrChatNotFound, http.StatusNotFound, ErrCodeNotFound},
		{services.ErrSameGender, http.StatusUnprocessableEntity, ErrCodeSameGender},
		{services.ErrNotFemale, http.StatusConflict, ErrCodeNotFemale},
		{services.ErrConcurrentUpdate, http.StatusConflict, ErrCodeConcurrentUpdate},
		{errors.New("boom"), http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		serviceError(c, tc.err)
		if w.Code != tc.status || errCode(t, w) != tc.code {
			t.Errorf("%v: got %d %s", tc.err, w.Code, w.Body.String())
		}
	}
}
