// Package disclosure はメッセージ可視性の判定ロジックを提供する。
//
// 判定は2つの独立したゲートの合成で、優先順位が仕様として固定されている:
//  1. 所有者ゲート — ゲストはいかなる日時でも本文と送り主名を読めない。
//  2. シーズンゲート — 所有者であっても11月から12月25日朝5時までは
//     本文が「包装」され読めない（自分へのプレゼントを先に覗かせない仕掛け）。
//
// Evaluate は純粋関数であり、同一入力に対して常に同一の結果を返す。
// ロック状態は壁時計に依存するため、結果はキャッシュせず開くたびに評価する。
package disclosure

import (
	"fmt"
	"time"

	"github.com/nalindotexe/deco-my-tree/internal/model"
)

// Reason は本文が秘匿されている理由を表す。
type Reason string

const (
	// ReasonNone は本文が開示されている状態。
	ReasonNone Reason = "NONE"
	// ReasonNotOwner はツリー所有者以外の閲覧者であることによる秘匿。
	ReasonNotOwner Reason = "NOT_OWNER"
	// ReasonSeasonLocked はクリスマス前シーズンによる秘匿。
	ReasonSeasonLocked Reason = "SEASON_LOCKED"
)

// Icon は閲覧モーダルに表示するアイコン種別を表す。
type Icon string

const (
	// IconSparkle は開示済みメッセージのアイコン。
	IconSparkle Icon = "sparkle"
	// IconLock はゲスト向け秘匿のアイコン。
	IconLock Icon = "lock"
	// IconGift はシーズンロック（包装中）のアイコン。
	IconGift Icon = "gift"
)

// 固定の表示文字列。オリジナルのクライアント表示と同一。
const (
	guestTitle = "Secret Message"
	guestBody  = "Only the tree owner can read this message!"
	lockedBody = "This message is wrapped until Christmas morning (Dec 25th, 5:00 AM)."
)

// アンロック時刻: 12月25日 5:00:00（nowのロケーションの暦）。
const (
	unlockDay  = 25
	unlockHour = 5
)

// Disclosure は1通のメッセージを閲覧者に見せる際の判定結果を表す。
type Disclosure struct {
	Title  string
	Body   string
	Locked bool // trueなら本文は秘匿されている
	Reason Reason
	Icon   Icon
}

// InLockedSeason はnowがロック期間内かどうかを返す。
// ロック期間は11月全体と、12月1日から12月25日4:59:59まで。
// 12月25日5:00:00ちょうどに解除され、以降翌年10月末まで開放される。
// 暦の解釈はnow自身のロケーションに従う。タイムゾーンは呼び出し側が
// 明示的に選択する（time.Now().In(loc)を渡す）。
func InLockedSeason(now time.Time) bool {
	isNovember := now.Month() == time.November
	isDecemberPreChristmas := now.Month() == time.December &&
		(now.Day() < unlockDay || (now.Day() == unlockDay && now.Hour() < unlockHour))
	return isNovember || isDecemberPreChristmas
}

// Evaluate はメッセージ・所有者フラグ・現在時刻から開示判定を行う。
//
// 優先順位は厳密で、先に一致した規則が勝つ:
//  1. 非所有者 → 常にロック。送り主名もタイトルに出さない。
//  2. 所有者かつロック期間 → ロック。送り主名は見せるが本文は包装文言。
//  3. それ以外 → 本文をそのまま開示。
//
// 副作用はなく、msgを変更しない。
func Evaluate(msg *model.Message, isOwner bool, now time.Time) Disclosure {
	if !isOwner {
		return Disclosure{
			Title:  guestTitle,
			Body:   guestBody,
			Locked: true,
			Reason: ReasonNotOwner,
			Icon:   IconLock,
		}
	}

	title := fmt.Sprintf("From: %s", msg.Sender)

	if InLockedSeason(now) {
		return Disclosure{
			Title:  title,
			Body:   lockedBody,
			Locked: true,
			Reason: ReasonSeasonLocked,
			Icon:   IconGift,
		}
	}

	return Disclosure{
		Title:  title,
		Body:   msg.Content,
		Locked: false,
		Reason: ReasonNone,
		Icon:   IconSparkle,
	}
}
