package nakama

import (
	"context"
	"encoding/json"
	"sync"

	"chinchon/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

type sentMessage struct {
	opCode     int64
	data       []byte
	recipients []string
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	sent         []sentMessage
	labelUpdates int
	lastLabel    string
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	msg := sentMessage{opCode: opCode, data: append([]byte(nil), data...)}
	for _, p := range presences {
		msg.recipients = append(msg.recipients, p.GetUserId())
	}
	md.sent = append(md.sent, msg)
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labelUpdates++
	md.lastLabel = label
	return nil
}

// messages returns every message sent with opCode.
func (md *mockDispatcher) messages(opCode int64) []sentMessage {
	var out []sentMessage
	for _, m := range md.sent {
		if m.opCode == opCode {
			out = append(out, m)
		}
	}
	return out
}

// mockPresence only answers the calls the handler makes.
type mockPresence struct {
	runtime.Presence
	userID   string
	username string
}

func (p mockPresence) GetUserId() string    { return p.userID }
func (p mockPresence) GetUsername() string  { return p.username }
func (p mockPresence) GetSessionId() string { return "session-" + p.userID }

func presence(userID string) runtime.Presence {
	return mockPresence{userID: userID, username: "name-" + userID}
}

type mockMatchData struct {
	mockPresence
	opCode int64
	data   []byte
}

func (d mockMatchData) GetOpCode() int64      { return d.opCode }
func (d mockMatchData) GetData() []byte       { return d.data }
func (d mockMatchData) GetReliable() bool     { return true }
func (d mockMatchData) GetReceiveTime() int64 { return 0 }

func matchData(userID string, opCode int64, payload interface{}) runtime.MatchData {
	var data []byte
	if payload != nil {
		data, _ = json.Marshal(payload)
	}
	return mockMatchData{mockPresence: mockPresence{userID: userID}, opCode: opCode, data: data}
}

// fakeNakama implements the storage and match calls of runtime.NakamaModule in memory.
type fakeNakama struct {
	runtime.NakamaModule

	mu       sync.Mutex
	objects  map[string]string
	matches  []*api.Match
	created  []map[string]interface{}
	signals  []string
	createID string
}

func newFakeNakama() *fakeNakama {
	return &fakeNakama{objects: make(map[string]string), createID: "match-new"}
}

func (f *fakeNakama) StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var acks []*api.StorageObjectAck
	for _, w := range writes {
		f.objects[w.Collection+"/"+w.Key] = w.Value
		acks = append(acks, &api.StorageObjectAck{Collection: w.Collection, Key: w.Key})
	}
	return acks, nil
}

func (f *fakeNakama) StorageRead(ctx context.Context, reads []*runtime.StorageRead) ([]*api.StorageObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var objects []*api.StorageObject
	for _, r := range reads {
		if v, ok := f.objects[r.Collection+"/"+r.Key]; ok {
			objects = append(objects, &api.StorageObject{Collection: r.Collection, Key: r.Key, Value: v})
		}
	}
	return objects, nil
}

func (f *fakeNakama) StorageDelete(ctx context.Context, deletes []*runtime.StorageDelete) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range deletes {
		delete(f.objects, d.Collection+"/"+d.Key)
	}
	return nil
}

func (f *fakeNakama) MatchList(ctx context.Context, limit int, authoritative bool, label string, minSize, maxSize *int, query string) ([]*api.Match, error) {
	return f.matches, nil
}

func (f *fakeNakama) MatchCreate(ctx context.Context, module string, params map[string]interface{}) (string, error) {
	f.created = append(f.created, params)
	return f.createID, nil
}

func (f *fakeNakama) MatchGet(ctx context.Context, id string) (*api.Match, error) {
	for _, m := range f.matches {
		if m.MatchId == id {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeNakama) MatchSignal(ctx context.Context, id string, data string) (string, error) {
	f.signals = append(f.signals, data)
	return "ok", nil
}

func (f *fakeNakama) addMatch(id, label string) {
	f.matches = append(f.matches, &api.Match{MatchId: id, Authoritative: true, Label: wrapperspb.String(label)})
}

func (f *fakeNakama) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[matchCollection+"/"+key]
	return ok
}

// memStats is an in-memory ports.StatsPort.
type memStats struct {
	records map[string]ports.StatsRecord
}

func newMemStats() *memStats {
	return &memStats{records: make(map[string]ports.StatsRecord)}
}

func (s *memStats) IncrementWin(ctx context.Context, scope, userID string) error {
	r := s.records[scope+":"+userID]
	r.Wins++
	s.records[scope+":"+userID] = r
	return nil
}

func (s *memStats) IncrementLoss(ctx context.Context, scope, userID string) error {
	r := s.records[scope+":"+userID]
	r.Losses++
	s.records[scope+":"+userID] = r
	return nil
}

func (s *memStats) Get(ctx context.Context, scope, userID string) (ports.StatsRecord, error) {
	return s.records[scope+":"+userID], nil
}
