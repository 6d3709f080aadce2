package localstore

import "context"

type StubRepository struct {
	data    map[string][]byte
	failPut error
}

func NewStubRepository() *StubRepository {
	return &StubRepository{data: map[string][]byte{}}
}

func (s *StubRepository) Get(ctx context.Context, userId string, key string) ([]byte, error) {
	return s.data[userId+"/"+key], nil
}

func (s *StubRepository) Put(ctx context.Context, userId string, key string, data []byte) error {
	if s.failPut != nil {
		return s.failPut
	}
	s.data[userId+"/"+key] = data
	return nil
}

func (s *StubRepository) Seed(userId string, key string, data []byte) {
	s.data[userId+"/"+key] = data
}

func (s *StubRepository) FailPutWith(err error) {
	s.failPut = err
}

func (s *StubRepository) Cleanup() {
	s.data = map[string][]byte{}
	s.failPut = nil
}
