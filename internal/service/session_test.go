package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbeisheim/boardview-backend/internal/model"
	"github.com/benbeisheim/boardview-backend/internal/ws"
)

// exclusiveConn fails the test run if two writes ever overlap, the way a
// websocket connection refuses concurrent writers.
type exclusiveConn struct {
	active   int32
	overlaps int32
	writes   int32
}

func (c *exclusiveConn) WriteJSON(interface{}) error {
	if atomic.AddInt32(&c.active, 1) > 1 {
		atomic.AddInt32(&c.overlaps, 1)
	}
	atomic.AddInt32(&c.writes, 1)
	time.Sleep(20 * time.Microsecond)
	atomic.AddInt32(&c.active, -1)
	return nil
}

func (c *exclusiveConn) Close() error { return nil }

func TestConnectionWritesNeverOverlap(t *testing.T) {
	bs := newTestService(nil)
	id, _ := bs.CreateBoard("")
	conn := &exclusiveConn{}
	if err := bs.RegisterConnection(id, "v", conn); err != nil {
		t.Fatalf("register: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			bs.SendStatus(id, "v", ws.Status{Message: "ok"})
		}()
		go func() {
			defer wg.Done()
			bs.SendError(id, "v", "bad")
		}()
		go func() {
			defer wg.Done()
			bs.LoadPosition(id, "")
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt32(&conn.overlaps); n != 0 {
		t.Fatalf("%d overlapping writes on one connection", n)
	}
	if n := atomic.LoadInt32(&conn.writes); n < 301 {
		t.Fatalf("only %d writes arrived", n)
	}
}

func TestViewerDisconnectCancelsItsDrag(t *testing.T) {
	bs := newTestService(nil)
	id, _ := bs.CreateBoard("")
	bs.RegisterConnection(id, "a", &fakeConn{})
	watcher := &fakeConn{}
	bs.RegisterConnection(id, "b", watcher)

	_, pawn, _ := bs.SquareInfo(id, "e2")
	if picked, _ := bs.PointerDown(id, "a", ws.PointerDownPayload{Ray: downAt(0.5, 2.5), Hits: []ws.Hit{{PieceID: pawn.ID}}}); !picked {
		t.Fatalf("a could not pick e2")
	}
	bs.PointerMove(id, "a", ws.PointerMovePayload{Ray: downAt(0.5, 0.5)})
	bs.UnregisterConnection(id, "a")

	snap, _ := bs.GetSnapshot(id)
	if snap.Dragging || !snap.ControlsEnabled {
		t.Fatalf("drag outlived its viewer: dragging=%v controls=%v", snap.Dragging, snap.ControlsEnabled)
	}
	_, onE2, _ := bs.SquareInfo(id, "e2")
	want := model.Vec3{X: 0.5, Y: model.DefaultGeometry().PieceBaseY(), Z: 2.5}
	if onE2 == nil || onE2.ID != pawn.ID || onE2.Position != want {
		t.Fatalf("e2 holds %+v, want the pawn at %+v", onE2, want)
	}
	var frame ws.Frame
	watcher.last(t, ws.MessageTypeFrame, &frame)
	if frame.ControlsEnabled == nil || !*frame.ControlsEnabled {
		t.Fatalf("remaining viewer not told controls are back: %+v", frame)
	}

	_, other, _ := bs.SquareInfo(id, "d2")
	if picked, _ := bs.PointerDown(id, "b", ws.PointerDownPayload{Ray: downAt(-0.5, 2.5), Hits: []ws.Hit{{PieceID: other.ID}}}); !picked {
		t.Fatalf("b could not pick after a left")
	}
}

func TestPointerEventsFromOtherViewersIgnored(t *testing.T) {
	bs := newTestService(nil)
	id, _ := bs.CreateBoard("")
	bs.RegisterConnection(id, "a", &fakeConn{})
	bs.RegisterConnection(id, "b", &fakeConn{})

	_, pawn, _ := bs.SquareInfo(id, "e2")
	_, knight, _ := bs.SquareInfo(id, "g1")
	bs.PointerDown(id, "a", ws.PointerDownPayload{Ray: downAt(0.5, 2.5), Hits: []ws.Hit{{PieceID: pawn.ID}}})

	if picked, _ := bs.PointerDown(id, "b", ws.PointerDownPayload{Ray: downAt(2.5, 3.5), Hits: []ws.Hit{{PieceID: knight.ID}}}); picked {
		t.Fatalf("b started a second drag")
	}
	bs.PointerMove(id, "b", ws.PointerMovePayload{Ray: downAt(-2.5, -2.5)})
	if err := bs.PointerUp(id, "b"); err != nil {
		t.Fatalf("b pointer up: %v", err)
	}
	bs.CancelDrag(id, "b")

	snap, _ := bs.GetSnapshot(id)
	if !snap.Dragging {
		t.Fatalf("b ended a's drag")
	}
	_, onE2, _ := bs.SquareInfo(id, "e2")
	if onE2 == nil || onE2.Position.X != 0.5 || onE2.Position.Z != 2.5 {
		t.Fatalf("b moved a's piece: %+v", onE2)
	}

	bs.PointerMove(id, "a", ws.PointerMovePayload{Ray: downAt(0.5, 0.5)})
	if err := bs.PointerUp(id, "a"); err != nil {
		t.Fatalf("a pointer up: %v", err)
	}
	_, onE4, _ := bs.SquareInfo(id, "e4")
	if onE4 == nil || onE4.ID != pawn.ID {
		t.Fatalf("e4 holds %+v, want a's pawn", onE4)
	}
	if picked, _ := bs.PointerDown(id, "b", ws.PointerDownPayload{Ray: downAt(2.5, 3.5), Hits: []ws.Hit{{PieceID: knight.ID}}}); !picked {
		t.Fatalf("b could not pick once a finished")
	}
}

func TestConcurrentLoadsPersistInOrder(t *testing.T) {
	st := newMemoryStore()
	bs := newTestService(st)
	id, _ := bs.CreateBoard(model.StartPlacement + " w - - 0 1")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			bs.LoadPosition(id, fmt.Sprintf("%s b - - 0 %d", model.StartPlacement, i+2))
		}(i)
		go func() {
			defer wg.Done()
			bs.ApplyEditor(id, "4k3/8/8/8/8/8/8/4K3")
		}()
	}
	wg.Wait()

	s, _ := bs.boardManager.GetBoard(id)
	st.mu.Lock()
	last := st.saves[len(st.saves)-1]
	saves := append([]string(nil), st.saves...)
	st.mu.Unlock()
	if last != s.FEN() {
		t.Fatalf("store holds %q, board shows %q", last, s.FEN())
	}
	// An editor apply keeps the trailing fields of whatever loaded just before it.
	for i := 1; i < len(saves); i++ {
		if !strings.HasPrefix(saves[i], "4k3/") {
			continue
		}
		prev := strings.Fields(saves[i-1])[1:]
		if got := strings.Fields(saves[i])[1:]; strings.Join(got, " ") != strings.Join(prev, " ") {
			t.Fatalf("save %d %q did not keep the fields of %q", i, saves[i], saves[i-1])
		}
	}
}

func TestSweepIdleUnloadsUnwatchedBoards(t *testing.T) {
	st := newMemoryStore()
	manager := NewBoardManager(model.DefaultGeometry(), st, time.Millisecond, 100*time.Millisecond, time.Minute)
	bs := NewBoardService(manager)
	watched, _ := bs.CreateBoard("")
	idle, _ := bs.CreateBoard("")
	bs.RegisterConnection(watched, "v", &fakeConn{})

	if n := manager.SweepIdle(time.Now()); n != 0 {
		t.Fatalf("swept %d fresh boards", n)
	}
	if n := manager.SweepIdle(time.Now().Add(2 * time.Minute)); n != 1 {
		t.Fatalf("swept %d boards, want 1", n)
	}
	if _, ok := manager.liveBoard(idle); ok {
		t.Fatalf("idle board still live")
	}
	if _, ok := manager.liveBoard(watched); !ok {
		t.Fatalf("watched board unloaded")
	}
	if _, err := bs.GetSnapshot(idle); err != nil {
		t.Fatalf("idle board not restorable: %v", err)
	}
}

func TestDeleteAndListBoards(t *testing.T) {
	st := newMemoryStore()
	bs := newTestService(st)
	keep, _ := bs.CreateBoard("")
	gone, _ := bs.CreateBoard("8/8/8/8/8/8/8/8 w - - 0 1")

	if err := bs.DeleteBoard(gone); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := bs.GetSnapshot(gone); !errors.Is(err, ErrBoardNotFound) {
		t.Fatalf("deleted board still reachable: %v", err)
	}
	if err := bs.DeleteBoard(gone); !errors.Is(err, ErrBoardNotFound) {
		t.Fatalf("second delete: got %v, want ErrBoardNotFound", err)
	}

	boards, err := bs.ListBoards(10)
	if err != nil || len(boards) != 1 || boards[0].ID != keep {
		t.Fatalf("list %+v, %v", boards, err)
	}
}

func TestListBoardsWithoutStore(t *testing.T) {
	bs := newTestService(nil)
	a, _ := bs.CreateBoard("")
	b, _ := bs.CreateBoard("")

	boards, err := bs.ListBoards(0)
	if err != nil || len(boards) != 2 {
		t.Fatalf("list %+v, %v", boards, err)
	}
	if err := bs.DeleteBoard(a); err != nil {
		t.Fatalf("delete: %v", err)
	}
	boards, _ = bs.ListBoards(0)
	if len(boards) != 1 || boards[0].ID != b || boards[0].FEN != model.DefaultFEN {
		t.Fatalf("list after delete %+v", boards)
	}
}
