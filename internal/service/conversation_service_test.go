package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/abhi01978/Panda/internal/database"
	"github.com/abhi01978/Panda/internal/model"
)

func testService(t *testing.T) *ConversationService {
	t.Helper()
	db, err := database.Open(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewConversationService(db)
}

func userMsg(content string) model.Message {
	return model.Message{Role: model.RoleUser, Content: content}
}

func TestCreate_TitleFromFirstUserMessage(t *testing.T) {
	s := testService(t)

	conv, err := s.Create("alice", []model.Message{userMsg("Hi")}, "Hello!")
	if err != nil {
		t.Fatal(err)
	}
	if conv.Title != "Hi" {
		t.Fatalf("title: got %q, want %q", conv.Title, "Hi")
	}
	if conv.ConvID == "" {
		t.Fatal("expected non-empty conversation id")
	}
}

func TestCreate_TitleTruncated(t *testing.T) {
	s := testService(t)

	long := strings.Repeat("x", 80)
	conv, err := s.Create("alice", []model.Message{userMsg(long)}, "reply")
	if err != nil {
		t.Fatal(err)
	}
	want := strings.Repeat("x", 50) + "..."
	if conv.Title != want {
		t.Fatalf("title: got %q, want %q", conv.Title, want)
	}
}

func TestCreate_TitleExactly50NotTruncated(t *testing.T) {
	s := testService(t)

	exact := strings.Repeat("x", 50)
	conv, err := s.Create("alice", []model.Message{userMsg(exact)}, "reply")
	if err != nil {
		t.Fatal(err)
	}
	if conv.Title != exact {
		t.Fatalf("title: got %q, want %q", conv.Title, exact)
	}
}

func TestCreate_TitleFallback(t *testing.T) {
	s := testService(t)

	messages := []model.Message{{Role: model.RoleSystem, Content: "be nice"}}
	conv, err := s.Create("alice", messages, "reply")
	if err != nil {
		t.Fatal(err)
	}
	if conv.Title != "New Chat" {
		t.Fatalf("title: got %q, want %q", conv.Title, "New Chat")
	}
}

func TestCreate_PersistsMessagesPlusReply(t *testing.T) {
	s := testService(t)

	messages := []model.Message{
		{Role: model.RoleSystem, Content: "be nice"},
		userMsg("Hi"),
	}
	conv, err := s.Create("alice", messages, "Hello!")
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.GetMessages("alice", conv.ConvID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("messages: got %d, want 3", len(got))
	}
	if got[0].Role != model.RoleSystem || got[0].Content != "be nice" {
		t.Fatalf("unexpected first message: %+v", got[0])
	}
	if got[1].Role != model.RoleUser || got[1].Content != "Hi" {
		t.Fatalf("unexpected second message: %+v", got[1])
	}
	if got[2].Role != model.RoleAssistant || got[2].Content != "Hello!" {
		t.Fatalf("unexpected trailing message: %+v", got[2])
	}
}

func TestAppend_AddsExactlyTwoTurns(t *testing.T) {
	s := testService(t)

	conv, err := s.Create("alice", []model.Message{userMsg("Hi")}, "Hello!")
	if err != nil {
		t.Fatal(err)
	}

	history := []model.Message{
		userMsg("Hi"),
		{Role: model.RoleAssistant, Content: "Hello!"},
		userMsg("How are you?"),
	}
	if err := s.Append("alice", conv.ConvID, history, "Fine, thanks."); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetMessages("alice", conv.ConvID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 {
		t.Fatalf("messages: got %d, want 4", len(got))
	}
	if got[2].Role != model.RoleUser || got[2].Content != "How are you?" {
		t.Fatalf("unexpected appended user turn: %+v", got[2])
	}
	if got[3].Role != model.RoleAssistant || got[3].Content != "Fine, thanks." {
		t.Fatalf("unexpected appended assistant turn: %+v", got[3])
	}
}

func TestAppend_OnlyLastUserMessageKept(t *testing.T) {
	s := testService(t)

	conv, err := s.Create("alice", []model.Message{userMsg("Hi")}, "Hello!")
	if err != nil {
		t.Fatal(err)
	}

	// 两条未落库的用户消息，只有最后一条会被保存
	history := []model.Message{
		userMsg("dropped"),
		userMsg("kept"),
	}
	if err := s.Append("alice", conv.ConvID, history, "ok"); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetMessages("alice", conv.ConvID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 {
		t.Fatalf("messages: got %d, want 4", len(got))
	}
	if got[2].Content != "kept" {
		t.Fatalf("appended user turn: got %q, want %q", got[2].Content, "kept")
	}
}

func TestAppend_RefreshesLastMessageAt(t *testing.T) {
	s := testService(t)

	conv, err := s.Create("alice", []model.Message{userMsg("Hi")}, "Hello!")
	if err != nil {
		t.Fatal(err)
	}
	before := conv.LastMessageAt

	time.Sleep(10 * time.Millisecond)
	if err := s.Append("alice", conv.ConvID, []model.Message{userMsg("again")}, "ok"); err != nil {
		t.Fatal(err)
	}

	var reloaded model.Conversation
	if err := s.db.Where("conv_id = ?", conv.ConvID).First(&reloaded).Error; err != nil {
		t.Fatal(err)
	}
	if !reloaded.LastMessageAt.After(before) {
		t.Fatalf("last_message_at not refreshed: before=%v after=%v", before, reloaded.LastMessageAt)
	}
	if reloaded.LastMessageAt.Before(reloaded.CreatedAt) {
		t.Fatal("last_message_at is before created_at")
	}
}

func TestOwnershipOpacity(t *testing.T) {
	s := testService(t)

	conv, err := s.Create("alice", []model.Message{userMsg("secret")}, "reply")
	if err != nil {
		t.Fatal(err)
	}

	// 他人访问与访问不存在的会话表现一致
	if err := s.Append("bob", conv.ConvID, []model.Message{userMsg("hi")}, "r"); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("append by non-owner: got %v, want ErrConversationNotFound", err)
	}
	if _, err := s.GetMessages("bob", conv.ConvID); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("get by non-owner: got %v, want ErrConversationNotFound", err)
	}
	if err := s.Delete("bob", conv.ConvID); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("delete by non-owner: got %v, want ErrConversationNotFound", err)
	}
	if _, err := s.GetMessages("alice", "no-such-id"); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("get missing id: got %v, want ErrConversationNotFound", err)
	}

	// 属主访问不受影响
	if _, err := s.GetMessages("alice", conv.ConvID); err != nil {
		t.Fatalf("get by owner: %v", err)
	}
}

func TestList_LimitAndOrder(t *testing.T) {
	s := testService(t)

	for i := 0; i < 7; i++ {
		if _, err := s.Create("alice", []model.Message{userMsg(fmt.Sprintf("chat %d", i))}, "r"); err != nil {
			t.Fatal(err)
		}
		time.Sleep(5 * time.Millisecond)
	}
	// 其他用户的会话不应出现在列表里
	if _, err := s.Create("bob", []model.Message{userMsg("other")}, "r"); err != nil {
		t.Fatal(err)
	}

	summaries, err := s.List("alice", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 5 {
		t.Fatalf("list: got %d entries, want 5", len(summaries))
	}
	if summaries[0].Title != "chat 6" {
		t.Fatalf("newest first: got %q, want %q", summaries[0].Title, "chat 6")
	}
	for i := 1; i < len(summaries); i++ {
		if summaries[i].UpdatedAt.After(summaries[i-1].UpdatedAt) {
			t.Fatalf("list not ordered by last message desc at index %d", i)
		}
	}
}

func TestList_LimitCappedAtFive(t *testing.T) {
	s := testService(t)

	for i := 0; i < 6; i++ {
		if _, err := s.Create("alice", []model.Message{userMsg("c")}, "r"); err != nil {
			t.Fatal(err)
		}
	}

	summaries, err := s.List("alice", 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 5 {
		t.Fatalf("list: got %d entries, want 5", len(summaries))
	}
}

func TestDelete_RemovesConversationAndMessages(t *testing.T) {
	s := testService(t)

	conv, err := s.Create("alice", []model.Message{userMsg("Hi")}, "Hello!")
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Delete("alice", conv.ConvID); err != nil {
		t.Fatal(err)
	}

	if _, err := s.GetMessages("alice", conv.ConvID); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("after delete: got %v, want ErrConversationNotFound", err)
	}

	var count int64
	if err := s.db.Model(&model.Message{}).Where("conversation_id = ?", conv.ID).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatalf("messages left after delete: %d", count)
	}
}
