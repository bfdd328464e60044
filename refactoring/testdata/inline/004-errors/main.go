package main

import "fmt"

type counter struct{ n int }

func (c *counter) inc() { c.n++ }

func main() {
	a := 1
	a++
	b := a + 1
	a = 5
	fmt.Println(a, b)
	c := counter{}
	c.inc()
	fmt.Println(c.n)
	k := 1
	m := k + 1
	{
		k := 2
		fmt.Println(m, k)
	}
	fmt.Println(k)
}

//<<<<<inline,10,2,10,3,fail
//<<<<<inline,12,2,12,3,fail
//<<<<<inline,15,2,15,3,fail
//<<<<<inline,19,2,19,3,fail
//<<<<<inline,7,27,7,28,fail
