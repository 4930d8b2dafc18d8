package usecase

import (
	"fmt"

	"github.com/metaland/auction-api/base/ctx"
	"github.com/metaland/auction-api/base/metrics"
	"github.com/metaland/auction-api/domain"
	"github.com/metaland/auction-api/domain/auction"
)

type nopEnder struct{}

func (nopEnder) End() {}

type nopMetrics struct{}

func (nopMetrics) BumpAvg(key string, val float64, tags ...string)       {}
func (nopMetrics) BumpSum(key string, val float64, tags ...string)       {}
func (nopMetrics) BumpHistogram(key string, val float64, tags ...string) {}
func (nopMetrics) BumpTime(key string, tags ...string) metrics.Ender     { return nopEnder{} }

type fakeClock struct {
	now domain.BlockNumber
}

func (f *fakeClock) Now() domain.BlockNumber { return f.now }

type fakeAuctionRepo struct {
	nextId     auction.AuctionId
	infos      map[auction.AuctionId]*auction.AuctionInfo
	items      map[auction.AuctionId]*auction.AuctionItem
	members    map[string]bool
	endIdx     map[domain.BlockNumber][]auction.AuctionId
	failSetBid bool
	failRemove bool
}

func newFakeAuctionRepo() *fakeAuctionRepo {
	return &fakeAuctionRepo{
		infos:   map[auction.AuctionId]*auction.AuctionInfo{},
		items:   map[auction.AuctionId]*auction.AuctionItem{},
		members: map[string]bool{},
		endIdx:  map[domain.BlockNumber][]auction.AuctionId{},
	}
}

func (f *fakeAuctionRepo) NextAuctionId(c ctx.Ctx) (auction.AuctionId, error) {
	id := f.nextId
	f.nextId++
	return id, nil
}

func (f *fakeAuctionRepo) Insert(c ctx.Ctx, id auction.AuctionId, info *auction.AuctionInfo, item *auction.AuctionItem) error {
	ci, cit := *info, *item
	f.infos[id] = &ci
	f.items[id] = &cit
	f.members[item.ItemId.Key()] = true
	f.endIdx[item.EndTime] = append(f.endIdx[item.EndTime], id)
	return nil
}

func (f *fakeAuctionRepo) FindInfo(c ctx.Ctx, id auction.AuctionId) (*auction.AuctionInfo, error) {
	info, ok := f.infos[id]
	if !ok {
		return nil, domain.ErrAuctionNotExist
	}
	ci := *info
	return &ci, nil
}

func (f *fakeAuctionRepo) FindItem(c ctx.Ctx, id auction.AuctionId) (*auction.AuctionItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, domain.ErrAuctionNotExist
	}
	ci := *item
	return &ci, nil
}

func (f *fakeAuctionRepo) SetBid(c ctx.Ctx, id auction.AuctionId, bid auction.Bid, end *domain.BlockNumber) error {
	if f.failSetBid {
		return domain.ErrInternalServerError
	}
	info, ok := f.infos[id]
	if !ok {
		return domain.ErrAuctionNotExist
	}
	b := bid
	info.Bid = &b
	if item, ok := f.items[id]; ok {
		item.Amount = bid.Amount
	}
	if end != nil {
		e := *end
		info.End = &e
		f.dropFromIndex(id)
		f.endIdx[e] = append(f.endIdx[e], id)
	}
	return nil
}

func (f *fakeAuctionRepo) Remove(c ctx.Ctx, id auction.AuctionId, item auction.ItemId) error {
	if f.failRemove {
		return domain.ErrInternalServerError
	}
	f.dropFromIndex(id)
	delete(f.infos, id)
	delete(f.members, item.Key())
	return nil
}

func (f *fakeAuctionRepo) RemoveItem(c ctx.Ctx, id auction.AuctionId) error {
	delete(f.items, id)
	return nil
}

func (f *fakeAuctionRepo) IsItemInAuction(c ctx.Ctx, item auction.ItemId) (bool, error) {
	return f.members[item.Key()], nil
}

func (f *fakeAuctionRepo) EndingAt(c ctx.Ctx, at domain.BlockNumber) ([]auction.AuctionId, error) {
	return append([]auction.AuctionId{}, f.endIdx[at]...), nil
}

func (f *fakeAuctionRepo) dropFromIndex(id auction.AuctionId) {
	for at, ids := range f.endIdx {
		kept := ids[:0]
		for _, v := range ids {
			if v != id {
				kept = append(kept, v)
			}
		}
		if len(kept) == 0 {
			delete(f.endIdx, at)
		} else {
			f.endIdx[at] = kept
		}
	}
}

type fakeAuthorizedRepo struct {
	set map[string]bool
}

func newFakeAuthorizedRepo() *fakeAuthorizedRepo {
	return &fakeAuthorizedRepo{set: map[string]bool{}}
}

func authKey(m domain.MetaverseId, col domain.CollectionId) string {
	return fmt.Sprintf("%d:%d", m, col)
}

func (f *fakeAuthorizedRepo) Authorize(c ctx.Ctx, m domain.MetaverseId, col domain.CollectionId) error {
	if f.set[authKey(m, col)] {
		return domain.ErrCollectionAlreadyAuthorised
	}
	f.set[authKey(m, col)] = true
	return nil
}

func (f *fakeAuthorizedRepo) Deauthorize(c ctx.Ctx, m domain.MetaverseId, col domain.CollectionId) error {
	if !f.set[authKey(m, col)] {
		return domain.ErrCollectionIsNotAuthorised
	}
	delete(f.set, authKey(m, col))
	return nil
}

func (f *fakeAuthorizedRepo) IsAuthorized(c ctx.Ctx, m domain.MetaverseId, col domain.CollectionId) (bool, error) {
	return f.set[authKey(m, col)], nil
}

type fakeActivityRepo struct {
	activities []*auction.Activity
}

func (f *fakeActivityRepo) Insert(c ctx.Ctx, activity *auction.Activity) error {
	ci := *activity
	f.activities = append(f.activities, &ci)
	return nil
}

func (f *fakeActivityRepo) FindByAuction(c ctx.Ctx, id auction.AuctionId) ([]*auction.Activity, error) {
	res := []*auction.Activity{}
	for _, a := range f.activities {
		if a.AuctionId == id {
			res = append(res, a)
		}
	}
	return res, nil
}

func (f *fakeActivityRepo) last() *auction.Activity {
	if len(f.activities) == 0 {
		return nil
	}
	return f.activities[len(f.activities)-1]
}

type fakeBalance struct {
	free     map[domain.Address]domain.Amount
	reserved map[domain.Address]domain.Amount
}

func newFakeBalance() *fakeBalance {
	return &fakeBalance{
		free:     map[domain.Address]domain.Amount{},
		reserved: map[domain.Address]domain.Amount{},
	}
}

func (f *fakeBalance) Spendable(c ctx.Ctx, address domain.Address) (domain.Amount, error) {
	return f.free[address.ToLower()], nil
}

func (f *fakeBalance) Reserve(c ctx.Ctx, address domain.Address, value domain.Amount) error {
	a := address.ToLower()
	if f.free[a] < value {
		return domain.ErrInsufficientFreeBalance
	}
	f.free[a] -= value
	f.reserved[a] += value
	return nil
}

func (f *fakeBalance) Unreserve(c ctx.Ctx, address domain.Address, value domain.Amount) error {
	a := address.ToLower()
	actual := value
	if f.reserved[a] < actual {
		actual = f.reserved[a]
	}
	f.reserved[a] -= actual
	f.free[a] += actual
	return nil
}

func (f *fakeBalance) Transfer(c ctx.Ctx, from, to domain.Address, value domain.Amount, keepAlive bool) error {
	fa, ta := from.ToLower(), to.ToLower()
	if f.free[fa] < value {
		return domain.ErrInsufficientFreeBalance
	}
	f.free[fa] -= value
	f.free[ta] += value
	return nil
}

type fungibleKey struct {
	currency domain.FungibleTokenId
	address  domain.Address
}

type fakeFungible struct {
	free     map[fungibleKey]domain.Amount
	reserved map[fungibleKey]domain.Amount
}

func newFakeFungible() *fakeFungible {
	return &fakeFungible{
		free:     map[fungibleKey]domain.Amount{},
		reserved: map[fungibleKey]domain.Amount{},
	}
}

func fk(currency domain.FungibleTokenId, address domain.Address) fungibleKey {
	return fungibleKey{currency, address.ToLower()}
}

func (f *fakeFungible) Spendable(c ctx.Ctx, currency domain.FungibleTokenId, address domain.Address) (domain.Amount, error) {
	return f.free[fk(currency, address)], nil
}

func (f *fakeFungible) Reserve(c ctx.Ctx, currency domain.FungibleTokenId, address domain.Address, value domain.Amount) error {
	k := fk(currency, address)
	if f.free[k] < value {
		return domain.ErrInsufficientFreeBalance
	}
	f.free[k] -= value
	f.reserved[k] += value
	return nil
}

func (f *fakeFungible) Unreserve(c ctx.Ctx, currency domain.FungibleTokenId, address domain.Address, value domain.Amount) error {
	k := fk(currency, address)
	actual := value
	if f.reserved[k] < actual {
		actual = f.reserved[k]
	}
	f.reserved[k] -= actual
	f.free[k] += actual
	return nil
}

func (f *fakeFungible) Transfer(c ctx.Ctx, currency domain.FungibleTokenId, from, to domain.Address, value domain.Amount) error {
	fka, tka := fk(currency, from), fk(currency, to)
	if f.free[fka] < value {
		return domain.ErrInsufficientFreeBalance
	}
	f.free[fka] -= value
	f.free[tka] += value
	return nil
}

type nftKey struct {
	collection domain.CollectionId
	token      domain.TokenId
}

type fakeNft struct {
	owners          map[nftKey]domain.Address
	nonTransferable map[nftKey]bool
	failTransfer    bool
}

func newFakeNft() *fakeNft {
	return &fakeNft{
		owners:          map[nftKey]domain.Address{},
		nonTransferable: map[nftKey]bool{},
	}
}

func (f *fakeNft) CheckOwnership(c ctx.Ctx, owner domain.Address, collection domain.CollectionId, token domain.TokenId) (bool, error) {
	cur, ok := f.owners[nftKey{collection, token}]
	if !ok {
		return false, domain.ErrAssetIsNotExist
	}
	return cur.ToLower() == owner.ToLower(), nil
}

func (f *fakeNft) IsTransferable(c ctx.Ctx, collection domain.CollectionId, token domain.TokenId) (bool, error) {
	if _, ok := f.owners[nftKey{collection, token}]; !ok {
		return false, domain.ErrAssetIsNotExist
	}
	return !f.nonTransferable[nftKey{collection, token}], nil
}

func (f *fakeNft) Transfer(c ctx.Ctx, from, to domain.Address, collection domain.CollectionId, token domain.TokenId) error {
	if f.failTransfer {
		return domain.ErrAssetIsNotExist
	}
	k := nftKey{collection, token}
	if f.owners[k].ToLower() != from.ToLower() {
		return domain.ErrAssetIsNotExist
	}
	f.owners[k] = to.ToLower()
	return nil
}

func (f *fakeNft) GetFeeSink(c ctx.Ctx, collection domain.CollectionId) (domain.Address, error) {
	return domain.Address(fmt.Sprintf("feesink:%d", collection)), nil
}

type fakeEstate struct {
	estates   map[domain.EstateId]domain.Address
	landUnits map[string]domain.Address
}

func newFakeEstate() *fakeEstate {
	return &fakeEstate{
		estates:   map[domain.EstateId]domain.Address{},
		landUnits: map[string]domain.Address{},
	}
}

func landKey(m domain.MetaverseId, co domain.Coordinate) string {
	return fmt.Sprintf("%d:%d:%d", m, co.X, co.Y)
}

func (f *fakeEstate) CheckEstate(c ctx.Ctx, estateId domain.EstateId) (bool, error) {
	_, ok := f.estates[estateId]
	return ok, nil
}

func (f *fakeEstate) CheckLandUnit(c ctx.Ctx, metaverseId domain.MetaverseId, coordinate domain.Coordinate) (bool, error) {
	_, ok := f.landUnits[landKey(metaverseId, coordinate)]
	return ok, nil
}

func (f *fakeEstate) TransferEstate(c ctx.Ctx, estateId domain.EstateId, from, to domain.Address) error {
	if f.estates[estateId].ToLower() != from.ToLower() {
		return domain.ErrEstateDoesNotExist
	}
	f.estates[estateId] = to.ToLower()
	return nil
}

func (f *fakeEstate) TransferLandUnit(c ctx.Ctx, coordinate domain.Coordinate, from, to domain.Address, metaverseId domain.MetaverseId) error {
	k := landKey(metaverseId, coordinate)
	if f.landUnits[k].ToLower() != from.ToLower() {
		return domain.ErrLandUnitDoesNotExist
	}
	f.landUnits[k] = to.ToLower()
	return nil
}

type fakeSpot struct {
	owners map[domain.SpotId]domain.Address
}

func newFakeSpot() *fakeSpot {
	return &fakeSpot{owners: map[domain.SpotId]domain.Address{}}
}

func (f *fakeSpot) TransferSpot(c ctx.Ctx, spotId domain.SpotId, from, to domain.Address, metaverseId domain.MetaverseId) error {
	if f.owners[spotId].ToLower() != from.ToLower() {
		return domain.ErrAssetIsNotExist
	}
	f.owners[spotId] = to.ToLower()
	return nil
}

type fakeMetaverse struct {
	owners map[domain.MetaverseId]domain.Address
}

func newFakeMetaverse() *fakeMetaverse {
	return &fakeMetaverse{owners: map[domain.MetaverseId]domain.Address{}}
}

func (f *fakeMetaverse) CheckOwnership(c ctx.Ctx, who domain.Address, metaverseId domain.MetaverseId) (bool, error) {
	return f.owners[metaverseId].ToLower() == who.ToLower(), nil
}
