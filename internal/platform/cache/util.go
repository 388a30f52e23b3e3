package cache

import (
	"time"
)

// b3Zone is the B3 exchange time zone, used when the tz database is unavailable.
var b3Zone = time.FixedZone("BRT", -3*60*60)

// TimeUntilNextSession は次のB3取引開始時刻（サンパウロ時間10時）までの期間を返します。
func TimeUntilNextSession(now time.Time) time.Duration {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		loc = b3Zone
	}
	now = now.In(loc)

	// 次の午前10時を計算
	next := time.Date(now.Year(), now.Month(), now.Day(), 10, 0, 0, 0, loc)

	// 今日の午前10時が既に過ぎている場合は翌日の午前10時を使用
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}

	return next.Sub(now)
}
