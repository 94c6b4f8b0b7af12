package utils

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Math captcha: the human-verification predicate in front of login and join.
// The client gets "a + b = ?" and must send back the sum. Answers live in
// Redis when it is reachable, otherwise in a process-local map with TTL.

const captchaTTL = 10 * time.Minute

type captchaEntry struct {
	answer    string
	expiresAt time.Time
}

var (
	captchaStore   = map[string]captchaEntry{}
	captchaStoreMu sync.Mutex
)

// GenerateCaptcha creates a challenge and returns (id, question).
func GenerateCaptcha() (string, string) {
	a := rand.Intn(9) + 1
	b := rand.Intn(9) + 1
	id := uuid.NewString()
	question := fmt.Sprintf("%d + %d", a, b)
	saveCaptcha(id, strconv.Itoa(a+b))
	return id, question
}

// VerifyCaptcha checks the answer and consumes the challenge on success.
func VerifyCaptcha(id, answer string) bool {
	answer = strings.TrimSpace(answer)
	if id == "" || answer == "" {
		return false
	}
	want, ok := takeCaptcha(id)
	if !ok {
		return false
	}
	return answer == want
}

func saveCaptcha(id, answer string) {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Set(ctx, "captcha:"+id, answer, captchaTTL).Err(); err == nil {
			return
		}
	}
	captchaStoreMu.Lock()
	captchaStore[id] = captchaEntry{answer: answer, expiresAt: time.Now().Add(captchaTTL)}
	captchaStoreMu.Unlock()
}

// takeCaptcha removes and returns the stored answer; single use either way.
func takeCaptcha(id string) (string, bool) {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if v, err := rc.GetDel(ctx, "captcha:"+id).Result(); err == nil && v != "" {
			return v, true
		}
	}
	captchaStoreMu.Lock()
	entry, ok := captchaStore[id]
	if ok {
		delete(captchaStore, id)
	}
	captchaStoreMu.Unlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return "", false
	}
	return entry.answer, true
}
