package pairv1

// Registry resolves pair symbols.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=pairv1_mock
type Registry interface {
	Resolve(symbol string) (CurrencyPair, error)
	List() []CurrencyPair
}
