// This is free and unencumbered software released into the public domain.
//
// Anyone is free to copy, modify, publish, use, compile, sell, or
// distribute this software, either in source code form or as a compiled
// binary, for any purpose, commercial or non-commercial, and by any
// means.
//
// In jurisdictions that recognize copyright laws, the author or authors
// of this software dedicate any and all copyright interest in the
// software to the public domain. We make this dedication for the benefit
// of the public at large and to the detriment of our heirs and
// successors. We intend this dedication to be an overt act of
// relinquishment in perpetuity of all present and future rights to this
// software under copyright law.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
// MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
// IN NO EVENT SHALL THE AUTHORS BE LIABLE FOR ANY CLAIM, DAMAGES OR
// OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE,
// ARISING FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR
// OTHER DEALINGS IN THE SOFTWARE.
//
// For more information, please refer to <https://unlicense.org>

// Package pow implements a Keccak-256 proof-of-work used to add grinding
// cost to proof generation: a verifier issues a difficulty, the prover
// searches for a nonce whose hash has that many leading zero bits, and
// the verifier re-hashes the claimed nonce to check the claim.
package pow

import (
	"context"
	"encoding/binary"
	"errors"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/starkcore/stcore/hash"
	"github.com/starkcore/stcore/u256"
)

// ErrInsufficientWork is returned by Verify when a response's hash does
// not meet the challenge's difficulty.
var ErrInsufficientWork = errors.New("pow: response does not meet the required difficulty")

// seedPrefix domain-separates proof-of-work seeds from any other use of
// Keccak-256 in the system.
var seedPrefix = [8]byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xed}

// threadedThreshold is the difficulty above which Solve switches from a
// single-threaded nonce search to a sharded parallel one. Below it, the
// expected number of tries is small enough that goroutine setup and
// coordination would dominate.
const threadedThreshold = 16

// ChallengeSeed is the 32-byte value a verifier derives (typically from
// a transcript) and turns into a Challenge at a chosen difficulty.
type ChallengeSeed [32]byte

// WithDifficulty derives a Challenge from the seed: a prover must find a
// nonce whose hash has at least difficulty leading zero bits.
func (s ChallengeSeed) WithDifficulty(difficulty int) Challenge {
	digest := hash.Keccak256(seedPrefix[:], s[:], []byte{byte(difficulty)})
	return Challenge{seed: digest, difficulty: difficulty}
}

// Challenge is a proof-of-work puzzle: find a nonce whose
// Keccak256(seed, nonce) has at least difficulty leading zero bits.
type Challenge struct {
	seed       hash.Digest
	difficulty int
}

// Response is a prover's claimed solution to a Challenge.
type Response struct {
	Nonce uint64
}

// work returns the number of leading zero bits of Keccak256(seed, nonce).
func (c Challenge) work(nonce uint64) int {
	var nonceBytes [8]byte
	binary.BigEndian.PutUint64(nonceBytes[:], nonce)
	digest := hash.Keccak256(c.seed[:], nonceBytes[:])
	return u256.FromBytesBE(digest[:]).LeadingZeros()
}

// Verify reports whether response solves c, since it handles a value
// that may come from an untrusted prover.
func (c Challenge) Verify(response Response) error {
	if c.work(response.Nonce) < c.difficulty {
		return ErrInsufficientWork
	}
	return nil
}

// Solve searches for a nonce solving c, starting from zero. Below
// threadedThreshold it searches sequentially; above it, it shards the
// u64 nonce space across GOMAXPROCS goroutines and returns as soon as
// any shard finds a solution. Solve exhausting the entire uint64 nonce
// space without finding a solution is treated as unreachable (the
// expected number of tries at any difficulty this package is used for
// is astronomically smaller than 2^64) and panics rather than
// returning a sentinel the caller would have to remember to check.
func (c Challenge) Solve() Response {
	if c.difficulty <= threadedThreshold {
		for nonce := uint64(0); ; nonce++ {
			if c.work(nonce) >= c.difficulty {
				return Response{Nonce: nonce}
			}
			if nonce == ^uint64(0) {
				break
			}
		}
		panic("pow: exhausted the nonce space without finding a solution")
	}
	return c.solveThreaded()
}

func (c Challenge) solveThreaded() Response {
	shards := runtime.GOMAXPROCS(0)
	if shards < 1 {
		shards = 1
	}
	stride := uint64(shards)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := make(chan Response, shards)
	g, ctx := errgroup.WithContext(ctx)
	for shard := 0; shard < shards; shard++ {
		start := uint64(shard)
		g.Go(func() error {
			for nonce := start; ; nonce += stride {
				select {
				case <-ctx.Done():
					return nil
				default:
				}
				if c.work(nonce) >= c.difficulty {
					select {
					case results <- Response{Nonce: nonce}:
						cancel()
					case <-ctx.Done():
					}
					return nil
				}
				if nonce > ^uint64(0)-stride {
					return nil
				}
			}
		})
	}

	done := make(chan struct{})
	go func() {
		g.Wait()
		close(done)
	}()
	<-done

	select {
	case r := <-results:
		return r
	default:
		panic("pow: exhausted the nonce space without finding a solution")
	}
}
