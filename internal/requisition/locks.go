package requisition

import "sync"

// Talep başına serileştirme: Aynı talebin satırları ve durumu üzerindeki tüm
// mutasyonlar birbirini dışlamalı. Satır kilidi (FOR UPDATE) postgres'te
// transaction'ları serileştirir; süreç içi mutex de aynı process'teki
// goroutine'lerin toplam yeniden hesaplamayı bayat okumayla yapmasını önler.
// Kayıtlar referans sayaçlıdır; son bekleyen bıraktığında haritadan düşer,
// harita görülen talep sayısıyla büyümez.

type reqLock struct {
	mu   sync.Mutex
	refs int
}

var (
	reqLocksMu sync.Mutex
	reqLocks   = map[uint]*reqLock{}
)

func lockRequisition(id uint) (unlock func()) {
	reqLocksMu.Lock()
	l, ok := reqLocks[id]
	if !ok {
		l = &reqLock{}
		reqLocks[id] = l
	}
	l.refs++
	reqLocksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		reqLocksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(reqLocks, id)
		}
		reqLocksMu.Unlock()
	}
}
