// Package model はドメインモデルを定義する。
package model

import "time"

// 入力制限（オリジナルのフォーム制限と同一）。
const (
	MaxSenderLength  = 20
	MaxContentLength = 300
)

// DefaultSender は送り主名が空のときに使われる表示名。
const DefaultSender = "Anonymous"

// Message はツリーに吊るされたオーナメント（メッセージ）を表す。
// 作成後は削除以外の変更は行われない。
// Sender は認証されない自由入力テキストであり、認可判定には決して使わない。
type Message struct {
	ID        string
	TreeID    string
	Sender    string
	Content   string
	Color     Color
	CreatedAt time.Time
}

// Color はオーナメントの色を表す。固定パレットのいずれか。
type Color string

const (
	// ColorRed は赤。パレット外の値のフォールバック先でもある。
	ColorRed Color = "red"
	// ColorGold は金。
	ColorGold Color = "gold"
	// ColorBlue は青。
	ColorBlue Color = "blue"
	// ColorGreen は緑。
	ColorGreen Color = "green"
	// ColorPurple は紫。
	ColorPurple Color = "purple"
	// ColorSilver は銀。
	ColorSilver Color = "silver"
)

// ParseColor は文字列をColorに変換する。
// パレット外の値はすべてColorRedにフォールバックし、未対応色が
// 表示を壊すことがないようにする。
func ParseColor(s string) Color {
	switch Color(s) {
	case ColorRed, ColorGold, ColorBlue, ColorGreen, ColorPurple, ColorSilver:
		return Color(s)
	default:
		return ColorRed
	}
}

// Palette は有効な色の一覧を返す。
func Palette() []Color {
	return []Color{ColorRed, ColorGold, ColorBlue, ColorGreen, ColorPurple, ColorSilver}
}
