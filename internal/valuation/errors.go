package valuation

import "errors"

// Sentinel errors surfaced by the valuation engine. Callers match with
// errors.Is; every error carries the symbol and stage via wrapping.
var (
	// ErrDataUnavailable: 피드가 해당 심볼/기간에 대해 아무 데이터도 주지 않음
	// (잘못된 티커, 상장폐지, 피드 장애, 타임아웃).
	ErrDataUnavailable = errors.New("price feed returned no data")

	// ErrInsufficientData: forward-fill 정책에서 backfill까지 실패한 경우.
	ErrInsufficientData = errors.New("insufficient data to reconcile series")

	// ErrEmptySeries: 재구성된 시계열에 항목이 하나도 없어 평균이 정의되지 않음.
	ErrEmptySeries = errors.New("reconciled series is empty")
)
