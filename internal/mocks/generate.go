package mocks

//go:generate mockgen -destination=./mock_fetcher.go -package=mocks StockForecast/internal/collector Fetcher
//go:generate mockgen -destination=./mock_recorder.go -package=mocks StockForecast/internal/recorder Recorder
