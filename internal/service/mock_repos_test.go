package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/Nischal456/my-attendance-system-sub000/internal/model"
	"github.com/Nischal456/my-attendance-system-sub000/internal/repository"
	pkgerrors "github.com/Nischal456/my-attendance-system-sub000/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// 内存版 Repository 实现（仅测试用）
// 行为与 GORM 实现对齐：部分唯一索引、乐观锁、NotFound 语义
// ═══════════════════════════════════════════════════════════

// ── mockUserRepo ──

type mockUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*model.User // key: UserID
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) nextID() string {
	m.seq++
	return fmt.Sprintf("user-%04d", m.seq)
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		user.UserID = m.nextID()
	}
	user.CreatedAt = time.Now().UTC()
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.UserID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UserID < all[j].UserID })
	total := int64(len(all))
	if offset >= len(all) {
		return []model.User{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.users, id)
	return nil
}

// ── mockAttendanceRepo ──

type mockAttendanceRepo struct {
	mu      sync.Mutex
	seq     int
	entries map[string]*model.AttendanceEntry // key: AttendanceID
	users   *mockUserRepo                     // 分组汇总需要员工姓名
}

func newMockAttendanceRepo(users *mockUserRepo) *mockAttendanceRepo {
	return &mockAttendanceRepo{
		entries: make(map[string]*model.AttendanceEntry),
		users:   users,
	}
}

func (m *mockAttendanceRepo) nextID() string {
	m.seq++
	return fmt.Sprintf("att-%04d", m.seq)
}

func copyEntry(e *model.AttendanceEntry) *model.AttendanceEntry {
	cp := *e
	cp.Breaks = append(model.BreakList{}, e.Breaks...)
	return &cp
}

func (m *mockAttendanceRepo) Create(_ context.Context, entry *model.AttendanceEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// 模拟部分唯一索引：同一员工同时只能有一条未签退记录
	if entry.CheckOutTime == nil {
		for _, e := range m.entries {
			if e.OwnerID == entry.OwnerID && e.CheckOutTime == nil {
				return pkgerrors.ErrOpenSessionConflict
			}
		}
	}
	if entry.AttendanceID == "" {
		entry.AttendanceID = m.nextID()
	}
	if entry.Version == 0 {
		entry.Version = 1
	}
	m.entries[entry.AttendanceID] = copyEntry(entry)
	return nil
}

func (m *mockAttendanceRepo) GetByID(_ context.Context, id string) (*model.AttendanceEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyEntry(e), nil
}

func (m *mockAttendanceRepo) GetOpenByOwner(_ context.Context, ownerID string) (*model.AttendanceEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.OwnerID == ownerID && e.CheckOutTime == nil {
			return copyEntry(e), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) Update(_ context.Context, entry *model.AttendanceEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// 模拟乐观锁：version 不匹配则更新 0 行
	stored, ok := m.entries[entry.AttendanceID]
	if !ok || stored.Version != entry.Version {
		return pkgerrors.ErrOptimisticLock
	}
	entry.Version++
	m.entries[entry.AttendanceID] = copyEntry(entry)
	return nil
}

func (m *mockAttendanceRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.entries, id)
	return nil
}

func (m *mockAttendanceRepo) ListByOwner(_ context.Context, ownerID string, offset, limit int) ([]model.AttendanceEntry, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.AttendanceEntry
	for _, e := range m.entries {
		if e.OwnerID == ownerID {
			all = append(all, *copyEntry(e))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CheckInTime.After(all[j].CheckInTime) })
	total := int64(len(all))
	if offset >= len(all) {
		return []model.AttendanceEntry{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockAttendanceRepo) SumDurationByOwner(_ context.Context, ownerID string, from, to time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for _, e := range m.entries {
		if e.OwnerID != ownerID || e.DurationSeconds == nil {
			continue
		}
		if e.CheckInTime.Before(from) || !e.CheckInTime.Before(to) {
			continue
		}
		total += *e.DurationSeconds
	}
	return total, nil
}

func (m *mockAttendanceRepo) SumDurationGrouped(_ context.Context, from, to time.Time) ([]repository.OwnerDurationSum, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byOwner := make(map[string]int64)
	for _, e := range m.entries {
		if e.DurationSeconds == nil {
			continue
		}
		if e.CheckInTime.Before(from) || !e.CheckInTime.Before(to) {
			continue
		}
		byOwner[e.OwnerID] += *e.DurationSeconds
	}

	sums := make([]repository.OwnerDurationSum, 0, len(byOwner))
	for ownerID, total := range byOwner {
		name := ""
		if m.users != nil {
			if u, ok := m.users.users[ownerID]; ok {
				name = u.Name
			}
		}
		sums = append(sums, repository.OwnerDurationSum{
			OwnerID:      ownerID,
			OwnerName:    name,
			TotalSeconds: total,
		})
	}
	sort.Slice(sums, func(i, j int) bool { return sums[i].OwnerName < sums[j].OwnerName })
	return sums, nil
}

// ── mockNotificationRepo ──

type mockNotificationRepo struct {
	mu   sync.Mutex
	seq  int
	list []*model.Notification
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if n.NotificationID == "" {
		n.NotificationID = fmt.Sprintf("ntf-%04d", m.seq)
	}
	n.CreatedAt = time.Now().UTC()
	cp := *n
	m.list = append(m.list, &cp)
	return nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, offset, limit int) ([]model.Notification, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.Notification
	for _, n := range m.list {
		if n.UserID == userID {
			all = append(all, *n)
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return []model.Notification{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.list {
		if n.NotificationID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── 组装 ──

func newMockRepository() (*repository.Repository, *mockUserRepo, *mockAttendanceRepo, *mockNotificationRepo) {
	users := newMockUserRepo()
	attendance := newMockAttendanceRepo(users)
	notifications := newMockNotificationRepo()
	return &repository.Repository{
		User:         users,
		Attendance:   attendance,
		Notification: notifications,
	}, users, attendance, notifications
}
