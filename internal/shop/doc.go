// Package shop wires the cart, compare, save-for-later and recently-viewed
// stores over one persistence adapter and runs the moves that span them.
//
// Every store is an instance owned by a Session; nothing here is global. A
// move touches two stores in sequence and is not transactional. Moves add to
// the destination first and only then remove from the source, so a failed
// move leaves the product where it was and an interrupted one can leave it in
// both lists, never in neither. Each move reports its own Step, and bulk moves
// aggregate Steps into a Report instead of failing as a whole.
package shop
